package simulation

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/elo-championship/internal/domain/leaguestanding"
	"github.com/riskibarqy/elo-championship/internal/domain/prediction"
)

var (
	winnerGoalWeights = []float64{30, 35, 20, 10, 5} // 1..5 goals
	loserGoalWeights  = []float64{50, 35, 15}        // 0..2 goals
	drawGoalWeights   = []float64{20, 40, 30, 10}    // 0..3 goals each
)

// distribution samples an index with probability proportional to its weight.
type distribution struct {
	cumulative []float64
}

func newDistribution(weights []float64) distribution {
	cum := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		total += w
		cum[i] = total
	}
	for i := range cum {
		cum[i] /= total
	}
	return distribution{cumulative: cum}
}

func (d distribution) sample(rng *rand.Rand) int {
	u := rng.Float64()
	for i, c := range d.cumulative {
		if u < c {
			return i
		}
	}
	return len(d.cumulative) - 1
}

// tiltedWinnerGoals skews the winner's goal count toward larger margins when
// the winner was the favorite and toward narrow wins after an upset.
func tiltedWinnerGoals(expectedWinner float64) distribution {
	tilt := expectedWinner - 0.5
	weights := make([]float64, len(winnerGoalWeights))
	for i, w := range winnerGoalWeights {
		weights[i] = w * math.Exp(tilt*float64(i))
	}
	return newDistribution(weights)
}

var (
	loserGoals = newDistribution(loserGoalWeights)
	drawGoals  = newDistribution(drawGoalWeights)
)

// plannedFixture is a fixture with everything that stays constant across
// trials resolved up front. Ratings are frozen for the whole run.
type plannedFixture struct {
	home        int
	away        int
	homeWinUpTo float64
	drawUpTo    float64
	homeWinner  distribution
	awayWinner  distribution
}

// scoreline draws an outcome category then a scoreline consistent with it.
func (f plannedFixture) scoreline(rng *rand.Rand) (homeGoals, awayGoals int) {
	u := rng.Float64()
	switch {
	case u < f.homeWinUpTo:
		w, l := winnerAndLoser(f.homeWinner, rng)
		return w, l
	case u < f.drawUpTo:
		g := drawGoals.sample(rng)
		return g, g
	default:
		w, l := winnerAndLoser(f.awayWinner, rng)
		return l, w
	}
}

func winnerAndLoser(winner distribution, rng *rand.Rand) (int, int) {
	w := winner.sample(rng) + 1
	l := loserGoals.sample(rng)
	if w <= l {
		w = l + 1
	}
	return w, l
}

// season is the immutable starting point shared by every trial.
type season struct {
	names    []string
	ratings  []float64
	current  []int
	points   []int
	goalsFor []int
	against  []int
	fixtures []plannedFixture
}

func newSeason(in Input, model prediction.Model, initialRating float64) (*season, error) {
	s := &season{}
	index := make(map[string]int)
	addTeam := func(name string, row leaguestanding.Standing) {
		index[name] = len(s.names)
		s.names = append(s.names, name)
		rating, ok := in.Ratings[name]
		if !ok {
			rating = initialRating
		}
		s.ratings = append(s.ratings, rating)
		s.points = append(s.points, row.Points)
		s.goalsFor = append(s.goalsFor, row.GoalsFor)
		s.against = append(s.against, row.GoalsAgainst)
		s.current = append(s.current, len(s.names))
	}

	for _, row := range in.Table {
		if row.TeamName == "" {
			return nil, errors.Wrap(ErrSimulationConfig, "table row without team name")
		}
		if _, dup := index[row.TeamName]; dup {
			return nil, errors.Wrapf(ErrSimulationConfig, "team %q listed twice in table", row.TeamName)
		}
		addTeam(row.TeamName, row)
	}

	for i, f := range in.Fixtures {
		if err := f.Validate(); err != nil {
			return nil, errors.Wrapf(errors.Mark(err, ErrSimulationConfig), "fixture %d", i+1)
		}
		f = f.Normalize()
		for _, name := range [2]string{f.HomeTeam, f.AwayTeam} {
			if _, ok := index[name]; !ok {
				addTeam(name, leaguestanding.Standing{TeamName: name})
			}
		}

		home, away := index[f.HomeTeam], index[f.AwayTeam]
		probs := model.Predict(s.ratings[home], s.ratings[away], f.Neutral)
		s.fixtures = append(s.fixtures, plannedFixture{
			home:        home,
			away:        away,
			homeWinUpTo: probs.HomeWin,
			drawUpTo:    probs.HomeWin + probs.Draw,
			homeWinner:  tiltedWinnerGoals(probs.ExpectedHome),
			awayWinner:  tiltedWinnerGoals(1 - probs.ExpectedHome),
		})
	}

	if len(s.names) == 0 {
		return nil, errors.Wrap(ErrSimulationConfig, "no teams to simulate")
	}
	return s, nil
}

func (s *season) size() int {
	return len(s.names)
}

// trial holds the scratch table of one simulated season. It is reused across
// the trials of a block and never shared between goroutines.
type trial struct {
	points   []int
	goalsFor []int
	against  []int
	order    []int
}

func newTrial(n int) *trial {
	return &trial{
		points:   make([]int, n),
		goalsFor: make([]int, n),
		against:  make([]int, n),
		order:    make([]int, n),
	}
}

// play simulates the remaining fixtures and leaves the final ranking in
// t.order, where t.order[rank] is the team index finishing at rank+1.
func (t *trial) play(s *season, rng *rand.Rand) {
	copy(t.points, s.points)
	copy(t.goalsFor, s.goalsFor)
	copy(t.against, s.against)

	for _, f := range s.fixtures {
		hg, ag := f.scoreline(rng)
		t.goalsFor[f.home] += hg
		t.against[f.home] += ag
		t.goalsFor[f.away] += ag
		t.against[f.away] += hg
		switch {
		case hg > ag:
			t.points[f.home] += leaguestanding.PointsWin
		case hg < ag:
			t.points[f.away] += leaguestanding.PointsWin
		default:
			t.points[f.home] += leaguestanding.PointsDraw
			t.points[f.away] += leaguestanding.PointsDraw
		}
	}

	for i := range t.order {
		t.order[i] = i
	}
	slices.SortFunc(t.order, func(a, b int) int {
		if t.points[a] != t.points[b] {
			return t.points[b] - t.points[a]
		}
		gdA, gdB := t.goalsFor[a]-t.against[a], t.goalsFor[b]-t.against[b]
		if gdA != gdB {
			return gdB - gdA
		}
		if t.goalsFor[a] != t.goalsFor[b] {
			return t.goalsFor[b] - t.goalsFor[a]
		}
		return a - b
	})
}
