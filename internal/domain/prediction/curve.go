package prediction

import (
	"fmt"
	"sort"
)

// Breakpoint pins the draw probability at an absolute rating difference.
type Breakpoint struct {
	Diff float64
	Draw float64
}

// Curve maps an absolute effective-rating difference to a draw probability
// by linear interpolation between breakpoints. Past the last breakpoint the
// last segment is extrapolated. Results are clamped to [Floor, Ceiling].
type Curve struct {
	Points  []Breakpoint
	Floor   float64
	Ceiling float64
}

// DefaultCurve is calibrated for league football: evenly matched sides draw
// about a quarter of the time and heavy mismatches rarely do.
func DefaultCurve() Curve {
	return Curve{
		Points: []Breakpoint{
			{Diff: 0, Draw: 0.26},
			{Diff: 100, Draw: 0.24},
			{Diff: 200, Draw: 0.20},
			{Diff: 300, Draw: 0.15},
			{Diff: 500, Draw: 0.10},
		},
		Floor:   0.08,
		Ceiling: 0.27,
	}
}

// Validate checks that the curve is usable.
func (c Curve) Validate() error {
	if len(c.Points) < 2 {
		return fmt.Errorf("draw curve needs at least 2 breakpoints, got %d", len(c.Points))
	}
	if !sort.SliceIsSorted(c.Points, func(i, j int) bool { return c.Points[i].Diff < c.Points[j].Diff }) {
		return fmt.Errorf("draw curve breakpoints must be sorted by diff")
	}
	for i := 1; i < len(c.Points); i++ {
		if c.Points[i].Diff == c.Points[i-1].Diff {
			return fmt.Errorf("draw curve has duplicate breakpoint at %.1f", c.Points[i].Diff)
		}
	}
	if c.Floor < 0 || c.Ceiling > 1 || c.Floor > c.Ceiling {
		return fmt.Errorf("draw curve bounds must satisfy 0 <= floor <= ceiling <= 1")
	}
	return nil
}

// At returns the draw probability for an absolute difference.
func (c Curve) At(diff float64) float64 {
	if diff < 0 {
		diff = -diff
	}
	points := c.Points
	if len(points) == 0 {
		return c.clamp(0)
	}
	if len(points) == 1 || diff <= points[0].Diff {
		return c.clamp(points[0].Draw)
	}

	idx := sort.Search(len(points), func(i int) bool { return points[i].Diff >= diff })
	if idx >= len(points) {
		idx = len(points) - 1
	}
	lo, hi := points[idx-1], points[idx]
	slope := (hi.Draw - lo.Draw) / (hi.Diff - lo.Diff)
	return c.clamp(lo.Draw + slope*(diff-lo.Diff))
}

func (c Curve) clamp(v float64) float64 {
	if v < c.Floor {
		return c.Floor
	}
	if v > c.Ceiling {
		return c.Ceiling
	}
	return v
}
