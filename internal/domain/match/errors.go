package match

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidMatchFact marks a fact rejected before it reaches the log.
	ErrInvalidMatchFact = errors.New("invalid match fact")
	// ErrUnknownMatchReference marks an edit or delete of a position that does not exist.
	ErrUnknownMatchReference = errors.New("unknown match reference")
)
