package simulation

import "math"

// tally accumulates integer statistics so that merging blocks in any order
// gives the same totals.
type tally struct {
	n              int
	trials         int64
	positionCounts []int64 // n*n, row = team, column = rank
	positionSum    []int64
	pointsSum      []int64
	minPoints      []int
	maxPoints      []int
}

func newTally(n int) *tally {
	t := &tally{
		n:              n,
		positionCounts: make([]int64, n*n),
		positionSum:    make([]int64, n),
		pointsSum:      make([]int64, n),
		minPoints:      make([]int, n),
		maxPoints:      make([]int, n),
	}
	for i := range t.minPoints {
		t.minPoints[i] = math.MaxInt
		t.maxPoints[i] = math.MinInt
	}
	return t
}

// observe records one finished trial, weighted by repeat.
func (t *tally) observe(order []int, points []int, repeat int64) {
	t.trials += repeat
	for rank, team := range order {
		t.positionCounts[team*t.n+rank] += repeat
		t.positionSum[team] += int64(rank+1) * repeat
		pts := points[team]
		t.pointsSum[team] += int64(pts) * repeat
		if pts < t.minPoints[team] {
			t.minPoints[team] = pts
		}
		if pts > t.maxPoints[team] {
			t.maxPoints[team] = pts
		}
	}
}

func (t *tally) merge(other *tally) {
	t.trials += other.trials
	for i := range t.positionCounts {
		t.positionCounts[i] += other.positionCounts[i]
	}
	for i := 0; i < t.n; i++ {
		t.positionSum[i] += other.positionSum[i]
		t.pointsSum[i] += other.pointsSum[i]
		if other.minPoints[i] < t.minPoints[i] {
			t.minPoints[i] = other.minPoints[i]
		}
		if other.maxPoints[i] > t.maxPoints[i] {
			t.maxPoints[i] = other.maxPoints[i]
		}
	}
}

func (t *tally) outcomes(s *season) []TeamOutcome {
	out := make([]TeamOutcome, 0, t.n)
	trials := float64(t.trials)
	topN := min(5, t.n)

	for team := 0; team < t.n; team++ {
		counts := t.positionCounts[team*t.n : (team+1)*t.n]
		percentages := make([]float64, t.n)
		mostLikely := 0
		var top5 int64
		for rank, c := range counts {
			percentages[rank] = float64(c) / trials * 100
			if c > counts[mostLikely] {
				mostLikely = rank
			}
			if rank < topN {
				top5 += c
			}
		}

		out = append(out, TeamOutcome{
			Name:                s.names[team],
			Rating:              s.ratings[team],
			CurrentPosition:     s.current[team],
			CurrentPoints:       s.points[team],
			AveragePosition:     float64(t.positionSum[team]) / trials,
			MostLikelyPosition:  mostLikely + 1,
			PositionPercentages: percentages,
			AveragePoints:       float64(t.pointsSum[team]) / trials,
			MinPoints:           t.minPoints[team],
			MaxPoints:           t.maxPoints[team],
			TitlePercent:        float64(counts[0]) / trials * 100,
			Top5Percent:         float64(top5) / trials * 100,
		})
	}
	return out
}
