package prediction

import "math"

// DefaultHomeAdvantage is the rating bonus given to the home side.
const DefaultHomeAdvantage = 60.0

// Model turns two ratings and a venue flag into outcome probabilities.
type Model struct {
	HomeAdvantage float64
	Draw          Curve
}

func DefaultModel() Model {
	return Model{
		HomeAdvantage: DefaultHomeAdvantage,
		Draw:          DefaultCurve(),
	}
}

// Triple holds the probabilities of a home win, draw and away win together
// with the quantities they were derived from.
type Triple struct {
	HomeWin      float64
	Draw         float64
	AwayWin      float64
	ExpectedHome float64
	RatingDiff   float64
}

// EffectiveHome adds the home advantage unless the venue is neutral.
func (m Model) EffectiveHome(rating float64, neutral bool) float64 {
	if neutral {
		return rating
	}
	return rating + m.HomeAdvantage
}

// ExpectedScore is the logistic Elo expectation of a side rated ratingA
// against a side rated ratingB.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// Predict returns the outcome probabilities for home vs away.
func (m Model) Predict(ratingHome, ratingAway float64, neutral bool) Triple {
	effHome := m.EffectiveHome(ratingHome, neutral)
	diff := effHome - ratingAway
	expected := ExpectedScore(effHome, ratingAway)
	draw := m.Draw.At(math.Abs(diff))

	return Triple{
		HomeWin:      expected * (1 - draw),
		Draw:         draw,
		AwayWin:      (1 - expected) * (1 - draw),
		ExpectedHome: expected,
		RatingDiff:   diff,
	}
}

// Percentages is a triple rendered for display.
type Percentages struct {
	HomeWin float64
	Draw    float64
	AwayWin float64
}

// Percentages converts the triple to percentages with one decimal. Rounding
// uses largest remainders so the three values always add up to 100.0.
func (t Triple) Percentages() Percentages {
	raw := [3]float64{t.HomeWin * 1000, t.Draw * 1000, t.AwayWin * 1000}
	var tenths [3]int
	total := 0
	for i, v := range raw {
		tenths[i] = int(math.Floor(v))
		total += tenths[i]
	}

	for left := 1000 - total; left > 0; left-- {
		best := -1
		bestRem := -1.0
		for i, v := range raw {
			rem := v - float64(tenths[i])
			if rem > bestRem {
				best, bestRem = i, rem
			}
		}
		tenths[best]++
		raw[best] = float64(tenths[best])
	}

	return Percentages{
		HomeWin: float64(tenths[0]) / 10,
		Draw:    float64(tenths[1]) / 10,
		AwayWin: float64(tenths[2]) / 10,
	}
}
