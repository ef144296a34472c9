package rating

import (
	"fmt"
	"math"

	"github.com/riskibarqy/elo-championship/internal/domain/prediction"
)

const (
	DefaultInitialRating         = 1500.0
	DefaultKBase                 = 40.0
	DefaultKEarly                = 50.0
	DefaultEarlyMatchesThreshold = 5
)

// Params holds the tunables of the rating fold.
type Params struct {
	InitialRating         float64
	KBase                 float64
	KEarly                float64
	EarlyMatchesThreshold int
	// MarginMultipliers is indexed by goal margin; margins past the end use
	// the last entry. Index 0 is used for draws.
	MarginMultipliers []float64
	Model             prediction.Model
}

func DefaultParams() Params {
	return Params{
		InitialRating:         DefaultInitialRating,
		KBase:                 DefaultKBase,
		KEarly:                DefaultKEarly,
		EarlyMatchesThreshold: DefaultEarlyMatchesThreshold,
		MarginMultipliers:     []float64{1.0, 1.0, 1.3, 1.5, 1.65, 1.75},
		Model:                 prediction.DefaultModel(),
	}
}

func (p Params) Validate() error {
	if p.InitialRating <= 0 || math.IsNaN(p.InitialRating) || math.IsInf(p.InitialRating, 0) {
		return fmt.Errorf("initial rating must be a positive finite number")
	}
	if p.KBase <= 0 || p.KEarly <= 0 {
		return fmt.Errorf("k factors must be > 0")
	}
	if p.EarlyMatchesThreshold < 0 {
		return fmt.Errorf("early matches threshold must be >= 0")
	}
	if len(p.MarginMultipliers) < 2 {
		return fmt.Errorf("margin multipliers need entries for draws and a one-goal margin")
	}
	for i, m := range p.MarginMultipliers {
		if m <= 0 {
			return fmt.Errorf("margin multiplier %d must be > 0", i)
		}
	}
	if p.Model.HomeAdvantage < 0 {
		return fmt.Errorf("home advantage must be >= 0")
	}
	return p.Model.Draw.Validate()
}

// KFactor returns the sensitivity for a team that has played matchesPlayed
// games before the match being rated.
func (p Params) KFactor(matchesPlayed int) float64 {
	if matchesPlayed < p.EarlyMatchesThreshold {
		return p.KEarly
	}
	return p.KBase
}

// Multiplier returns the goal-margin weight.
func (p Params) Multiplier(margin int) float64 {
	if margin < 0 {
		margin = -margin
	}
	if margin >= len(p.MarginMultipliers) {
		margin = len(p.MarginMultipliers) - 1
	}
	return p.MarginMultipliers[margin]
}
