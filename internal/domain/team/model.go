package team

import (
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"
)

// Team is a club known to the championship. Identity is the normalized name.
type Team struct {
	ID   string
	Name string
}

// New builds a team from a raw display name.
func New(name string) Team {
	normalized := NormalizeName(name)
	return Team{ID: IDFromName(normalized), Name: normalized}
}

// NormalizeName trims surrounding whitespace, collapses inner runs of
// whitespace and converts the name to Unicode NFC so that visually equal
// names compare equal.
func NormalizeName(name string) string {
	fields := strings.Fields(name)
	return norm.NFC.String(strings.Join(fields, " "))
}

// IDFromName derives the URL-safe identifier used by the HTTP layer.
func IDFromName(name string) string {
	return slug.Make(NormalizeName(name))
}

// IDCollision names two distinct teams that map to the same ID.
type IDCollision struct {
	ID     string
	First  string
	Second string
}

// FindIDCollision reports the first pair of names that would share an ID.
func FindIDCollision(names []string) (IDCollision, bool) {
	owners := make(map[string]string, len(names))
	for _, name := range names {
		id := IDFromName(name)
		if owner, ok := owners[id]; ok && owner != name {
			return IDCollision{ID: id, First: owner, Second: name}, true
		}
		owners[id] = name
	}
	return IDCollision{}, false
}
