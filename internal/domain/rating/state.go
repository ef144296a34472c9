package rating

import (
	"maps"
	"slices"

	"github.com/riskibarqy/elo-championship/internal/domain/team"
)

// TeamRating is the derived strength of one team.
type TeamRating struct {
	Name          string
	Rating        float64
	MatchesPlayed int
}

// State is the rating of every team seen so far. Teams keep the order in
// which they first appeared in the log.
type State struct {
	teams map[string]TeamRating
	order []string
}

func NewState() State {
	return State{teams: make(map[string]TeamRating)}
}

// Team returns the rating of a known team.
func (s State) Team(name string) (TeamRating, bool) {
	tr, ok := s.teams[name]
	return tr, ok
}

// Len returns the number of known teams.
func (s State) Len() int {
	return len(s.order)
}

// Teams returns all ratings in first-appearance order.
func (s State) Teams() []TeamRating {
	out := make([]TeamRating, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.teams[name])
	}
	return out
}

func (s State) clone() State {
	return State{
		teams: maps.Clone(s.teams),
		order: slices.Clone(s.order),
	}
}

func (s *State) ensure(name string, initial float64) TeamRating {
	if s.teams == nil {
		s.teams = make(map[string]TeamRating)
	}
	tr, ok := s.teams[name]
	if !ok {
		tr = TeamRating{Name: name, Rating: initial}
		s.teams[name] = tr
		s.order = append(s.order, name)
	}
	return tr
}

func (s *State) put(tr TeamRating) {
	s.teams[tr.Name] = tr
}

// Status of the team under the given threshold.
func (tr TeamRating) Status(earlyThreshold int) team.Status {
	return team.StatusFor(tr.MatchesPlayed, earlyThreshold)
}
