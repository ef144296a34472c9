package rating

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/elo-championship/internal/domain/match"
	"github.com/riskibarqy/elo-championship/internal/domain/prediction"
)

// ErrRecomputeFailure is returned when a replay of the log hits an
// inconsistent record. No partial snapshot is produced.
var ErrRecomputeFailure = errors.New("rating recompute failed")

// MatchEvaluation is what the fold computed for one record. It is rebuilt
// on every recompute and is only meant for display.
type MatchEvaluation struct {
	RecordID          string
	Position          int
	Fact              match.Fact
	HomeBefore        float64
	AwayBefore        float64
	HomeMatchesBefore int
	AwayMatchesBefore int
	KHome             float64
	KAway             float64
	Multiplier        float64
	Probabilities     prediction.Triple
	DeltaHome         float64
	DeltaAway         float64
	HomeAfter         float64
	AwayAfter         float64
}

// Engine folds a match log into ratings.
type Engine struct {
	params Params
}

func NewEngine(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid rating params")
	}
	return &Engine{params: params}, nil
}

func (e *Engine) Params() Params {
	return e.params
}

// Model is the probability model shared with predictions and simulations.
func (e *Engine) Model() prediction.Model {
	return e.params.Model
}

// ApplyMatch rates a single record on top of state. The input state is not
// modified.
func (e *Engine) ApplyMatch(state State, rec match.Record) (State, MatchEvaluation, error) {
	next := state.clone()
	eval, err := e.apply(&next, rec)
	if err != nil {
		return state, MatchEvaluation{}, err
	}
	return next, eval, nil
}

// Recompute replays the whole log from initial ratings.
func (e *Engine) Recompute(records []match.Record) (Snapshot, error) {
	state := NewState()
	evaluations := make([]MatchEvaluation, 0, len(records))
	for _, rec := range records {
		eval, err := e.apply(&state, rec)
		if err != nil {
			return Snapshot{}, err
		}
		evaluations = append(evaluations, eval)
	}

	return Snapshot{
		state:       state,
		evaluations: evaluations,
		params:      e.params,
	}, nil
}

func (e *Engine) apply(state *State, rec match.Record) (MatchEvaluation, error) {
	if err := rec.Validate(); err != nil {
		return MatchEvaluation{}, errors.Wrapf(errors.Mark(err, ErrRecomputeFailure), "match %d", rec.Position)
	}

	home := state.ensure(rec.HomeTeam, e.params.InitialRating)
	away := state.ensure(rec.AwayTeam, e.params.InitialRating)

	probs := e.params.Model.Predict(home.Rating, away.Rating, rec.Neutral)
	expectedHome := probs.ExpectedHome
	expectedAway := 1 - expectedHome

	var scoreHome float64
	switch rec.Outcome() {
	case match.OutcomeHomeWin:
		scoreHome = 1
	case match.OutcomeDraw:
		scoreHome = 0.5
	}
	scoreAway := 1 - scoreHome

	multiplier := e.params.Multiplier(rec.Margin())
	kHome := e.params.KFactor(home.MatchesPlayed)
	kAway := e.params.KFactor(away.MatchesPlayed)
	deltaHome := kHome * multiplier * (scoreHome - expectedHome)
	deltaAway := kAway * multiplier * (scoreAway - expectedAway)

	eval := MatchEvaluation{
		RecordID:          rec.ID,
		Position:          rec.Position,
		Fact:              rec.Fact,
		HomeBefore:        home.Rating,
		AwayBefore:        away.Rating,
		HomeMatchesBefore: home.MatchesPlayed,
		AwayMatchesBefore: away.MatchesPlayed,
		KHome:             kHome,
		KAway:             kAway,
		Multiplier:        multiplier,
		Probabilities:     probs,
		DeltaHome:         deltaHome,
		DeltaAway:         deltaAway,
		HomeAfter:         home.Rating + deltaHome,
		AwayAfter:         away.Rating + deltaAway,
	}
	if !finite(eval.HomeAfter) || !finite(eval.AwayAfter) {
		return MatchEvaluation{}, errors.Wrapf(ErrRecomputeFailure, "match %d produced a non-finite rating", rec.Position)
	}

	home.Rating = eval.HomeAfter
	home.MatchesPlayed++
	away.Rating = eval.AwayAfter
	away.MatchesPlayed++
	state.put(home)
	state.put(away)

	return eval, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Ranking is one row of the rating table.
type Ranking struct {
	Rank          int
	Name          string
	Rating        float64
	MatchesPlayed int
	Status        string
}

// Snapshot is the immutable result of a recompute.
type Snapshot struct {
	state       State
	evaluations []MatchEvaluation
	params      Params
}

// Rating returns the team rating, or the initial rating for unknown teams.
func (s Snapshot) Rating(name string) float64 {
	if tr, ok := s.state.Team(name); ok {
		return tr.Rating
	}
	return s.params.InitialRating
}

// Team returns the full rating entry of a known team.
func (s Snapshot) Team(name string) (TeamRating, bool) {
	return s.state.Team(name)
}

// Teams returns every rated team in first-appearance order.
func (s Snapshot) Teams() []TeamRating {
	return s.state.Teams()
}

// Ratings returns a name to rating map.
func (s Snapshot) Ratings() map[string]float64 {
	out := make(map[string]float64, s.state.Len())
	for _, tr := range s.state.Teams() {
		out[tr.Name] = tr.Rating
	}
	return out
}

// Evaluations returns the per-match display values in log order.
func (s Snapshot) Evaluations() []MatchEvaluation {
	out := make([]MatchEvaluation, len(s.evaluations))
	copy(out, s.evaluations)
	return out
}

// EarlyMatchesThreshold used for status labels.
func (s Snapshot) EarlyMatchesThreshold() int {
	return s.params.EarlyMatchesThreshold
}

// Rankings sorts teams by rating, highest first, ties by name.
func (s Snapshot) Rankings() []Ranking {
	teams := s.state.Teams()
	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].Rating != teams[j].Rating {
			return teams[i].Rating > teams[j].Rating
		}
		return teams[i].Name < teams[j].Name
	})

	out := make([]Ranking, 0, len(teams))
	for i, tr := range teams {
		out = append(out, Ranking{
			Rank:          i + 1,
			Name:          tr.Name,
			Rating:        Round1(tr.Rating),
			MatchesPlayed: tr.MatchesPlayed,
			Status:        tr.Status(s.params.EarlyMatchesThreshold).Label(),
		})
	}
	return out
}

// Round1 rounds to one decimal for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
