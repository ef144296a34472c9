package simulation

import (
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/elo-championship/internal/domain/fixture"
	"github.com/riskibarqy/elo-championship/internal/domain/leaguestanding"
)

const (
	DefaultTrials = 100000

	// blockSize is the number of trials that share one random stream. It is
	// part of the reproducibility contract: changing it changes results for
	// a given seed.
	blockSize = 1000
)

// ErrSimulationConfig is returned for unusable run parameters.
var ErrSimulationConfig = errors.New("invalid simulation config")

// Config controls one Monte Carlo run.
type Config struct {
	Trials int
	// Seed fixes the random streams. A nil seed draws a fresh one, which is
	// reported back in the result.
	Seed *uint64
	// Workers bounds parallelism. Zero uses GOMAXPROCS.
	Workers int
}

// Input is the season state the run starts from. Table order is the last
// tie-break when teams finish level on points, goal difference and goals
// scored.
type Input struct {
	Ratings  map[string]float64
	Table    []leaguestanding.Standing
	Fixtures []fixture.Fixture
}

// TeamOutcome aggregates the final standings of one team over all trials.
// Percent fields are in the 0..100 range.
type TeamOutcome struct {
	Name                string
	Rating              float64
	CurrentPosition     int
	CurrentPoints       int
	AveragePosition     float64
	MostLikelyPosition  int
	PositionPercentages []float64
	AveragePoints       float64
	MinPoints           int
	MaxPoints           int
	TitlePercent        float64
	Top5Percent         float64
}

// Result is the season outcome distribution, ordered by average position.
type Result struct {
	Trials   int
	Seed     uint64
	Fixtures int
	Teams    []TeamOutcome
}
