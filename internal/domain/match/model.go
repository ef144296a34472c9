package match

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/elo-championship/internal/domain/team"
)

// Outcome is the result of a match from the home side's perspective.
type Outcome int

const (
	OutcomeHomeWin Outcome = iota + 1
	OutcomeDraw
	OutcomeAwayWin
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHomeWin:
		return "HOME_WIN"
	case OutcomeDraw:
		return "DRAW"
	case OutcomeAwayWin:
		return "AWAY_WIN"
	default:
		return "UNKNOWN"
	}
}

// Fact is a played match as entered by the user.
type Fact struct {
	HomeTeam  string
	AwayTeam  string
	HomeGoals int
	AwayGoals int
	Neutral   bool
}

// Normalize returns the fact with canonical team names.
func (f Fact) Normalize() Fact {
	f.HomeTeam = team.NormalizeName(f.HomeTeam)
	f.AwayTeam = team.NormalizeName(f.AwayTeam)
	return f
}

// Validate rejects facts that cannot be rated. Names are compared after
// normalization.
func (f Fact) Validate() error {
	n := f.Normalize()
	if n.HomeTeam == "" {
		return errors.Wrap(ErrInvalidMatchFact, "home team is required")
	}
	if n.AwayTeam == "" {
		return errors.Wrap(ErrInvalidMatchFact, "away team is required")
	}
	if n.HomeTeam == n.AwayTeam {
		return errors.Wrapf(ErrInvalidMatchFact, "team %q cannot play itself", n.HomeTeam)
	}
	if f.HomeGoals < 0 || f.AwayGoals < 0 {
		return errors.Wrapf(ErrInvalidMatchFact, "goals must be >= 0, got %d-%d", f.HomeGoals, f.AwayGoals)
	}
	return nil
}

func (f Fact) Outcome() Outcome {
	switch {
	case f.HomeGoals > f.AwayGoals:
		return OutcomeHomeWin
	case f.HomeGoals < f.AwayGoals:
		return OutcomeAwayWin
	default:
		return OutcomeDraw
	}
}

// Margin is the absolute goal difference.
func (f Fact) Margin() int {
	if f.HomeGoals > f.AwayGoals {
		return f.HomeGoals - f.AwayGoals
	}
	return f.AwayGoals - f.HomeGoals
}

// Involves reports whether the named team played in the match.
func (f Fact) Involves(name string) bool {
	return f.HomeTeam == name || f.AwayTeam == name
}

// Record is a fact stored in the log. Position is 1-based and follows log order.
type Record struct {
	ID         string
	Position   int
	RecordedAt time.Time
	Fact
}
