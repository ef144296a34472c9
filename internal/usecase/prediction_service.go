package usecase

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/elo-championship/internal/domain/fixture"
	"github.com/riskibarqy/elo-championship/internal/domain/prediction"
	"github.com/riskibarqy/elo-championship/internal/domain/rating"
	"github.com/riskibarqy/elo-championship/internal/domain/simulation"
	"github.com/riskibarqy/elo-championship/internal/domain/team"
	"github.com/riskibarqy/elo-championship/internal/platform/cache"
	"github.com/riskibarqy/elo-championship/internal/platform/logging"
)

const seasonCacheEntries = 32

type PredictMatchInput struct {
	HomeTeam string
	AwayTeam string
	Neutral  bool
}

// MatchSide is one team as seen by a match prediction.
type MatchSide struct {
	Name          string
	Rating        float64
	MatchesPlayed int
	Status        string
	Known         bool
}

type MatchPrediction struct {
	Home        MatchSide
	Away        MatchSide
	Neutral     bool
	Triple      prediction.Triple
	Percentages prediction.Percentages
	// Provisional is set when either side has too few matches for a
	// settled rating.
	Provisional bool
}

type RemainingFixtures struct {
	Fixtures []fixture.Fixture
	Progress fixture.Progress
}

type PredictSeasonInput struct {
	Trials int
	Seed   *uint64
}

type SeasonForecast struct {
	Version  uint64
	Progress fixture.Progress
	// Complete is set when no fixtures remain; Result then holds the final
	// table with certain outcomes.
	Complete bool
	Result   simulation.Result
}

type PredictionOptions struct {
	DefaultTrials int
	MaxTrials     int
	Workers       int
}

type PredictionService struct {
	championship *ChampionshipService
	simulator    *simulation.Simulator
	forecasts    *cache.Store[SeasonForecast]
	opts         PredictionOptions
	logger       *logging.Logger
}

func NewPredictionService(
	championship *ChampionshipService,
	simulator *simulation.Simulator,
	forecasts *cache.Store[SeasonForecast],
	opts PredictionOptions,
	logger *logging.Logger,
) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}
	if opts.DefaultTrials <= 0 {
		opts.DefaultTrials = simulation.DefaultTrials
	}
	if forecasts == nil {
		forecasts = cache.NewStore[SeasonForecast](0, seasonCacheEntries)
	}

	return &PredictionService{
		championship: championship,
		simulator:    simulator,
		forecasts:    forecasts,
		opts:         opts,
		logger:       logger.Named("prediction"),
	}
}

// PredictMatch rates a hypothetical match with current ratings. Teams without
// matches play at the initial rating.
func (s *PredictionService) PredictMatch(ctx context.Context, input PredictMatchInput) (MatchPrediction, error) {
	_, span := startUsecaseSpan(ctx, "usecase.PredictionService.PredictMatch")
	defer span.End()

	home := team.NormalizeName(input.HomeTeam)
	away := team.NormalizeName(input.AwayTeam)
	if home == "" || away == "" {
		return MatchPrediction{}, fmt.Errorf("%w: home and away teams are required", ErrInvalidInput)
	}
	if home == away {
		return MatchPrediction{}, fmt.Errorf("%w: team %q cannot play itself", ErrInvalidInput, home)
	}

	snapshot := s.championship.current().snapshot
	homeSide := matchSide(snapshot, home)
	awaySide := matchSide(snapshot, away)

	triple := s.championship.engine.Model().Predict(homeSide.Rating, awaySide.Rating, input.Neutral)
	provisional := team.StatusProvisional.Label()
	return MatchPrediction{
		Home:        homeSide,
		Away:        awaySide,
		Neutral:     input.Neutral,
		Triple:      triple,
		Percentages: triple.Percentages(),
		Provisional: homeSide.Status == provisional || awaySide.Status == provisional,
	}, nil
}

func matchSide(snapshot rating.Snapshot, name string) MatchSide {
	side := MatchSide{Name: name, Rating: snapshot.Rating(name)}
	tr, ok := snapshot.Team(name)
	if ok {
		side.Known = true
		side.MatchesPlayed = tr.MatchesPlayed
	}
	side.Status = team.StatusFor(side.MatchesPlayed, snapshot.EarlyMatchesThreshold()).Label()
	return side
}

// RemainingFixtures lists the unplayed double round-robin fixtures between
// all teams in the log.
func (s *PredictionService) RemainingFixtures(ctx context.Context) RemainingFixtures {
	_, span := startUsecaseSpan(ctx, "usecase.PredictionService.RemainingFixtures")
	defer span.End()

	return remainingFor(s.championship.current())
}

func remainingFor(st *championshipState) RemainingFixtures {
	teams := st.log.Teams()
	records := st.log.Records()
	fixtures := fixture.Remaining(teams, records)
	return RemainingFixtures{
		Fixtures: fixtures,
		Progress: fixture.SeasonProgress(len(teams), len(records), len(fixtures)),
	}
}

// PredictSeason runs the Monte Carlo season projection from the current
// table. Identical requests against the same log share one run.
func (s *PredictionService) PredictSeason(ctx context.Context, input PredictSeasonInput) (SeasonForecast, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.PredictSeason")
	defer span.End()

	trials := input.Trials
	if trials == 0 {
		trials = s.opts.DefaultTrials
	}
	if trials < 0 {
		return SeasonForecast{}, fmt.Errorf("%w: trials must be > 0", ErrInvalidInput)
	}
	if s.opts.MaxTrials > 0 && trials > s.opts.MaxTrials {
		return SeasonForecast{}, fmt.Errorf("%w: trials must be <= %d", ErrInvalidInput, s.opts.MaxTrials)
	}

	st := s.championship.current()
	if len(st.log.Teams()) < 2 {
		return SeasonForecast{}, fmt.Errorf("%w: season prediction needs at least two teams", ErrInvalidInput)
	}
	span.SetAttributes(attribute.Int("simulation.trials", trials))

	key := seasonCacheKey(st.version, trials, input.Seed)
	return s.forecasts.GetOrLoad(ctx, key, func(ctx context.Context) (SeasonForecast, error) {
		return s.runSeason(ctx, st, trials, input.Seed)
	})
}

func (s *PredictionService) runSeason(ctx context.Context, st *championshipState, trials int, seed *uint64) (SeasonForecast, error) {
	remaining := remainingFor(st)
	result, err := s.simulator.Run(ctx, simulation.Input{
		Ratings:  st.snapshot.Ratings(),
		Table:    st.standings,
		Fixtures: remaining.Fixtures,
	}, simulation.Config{
		Trials:  trials,
		Seed:    seed,
		Workers: s.opts.Workers,
	})
	if err != nil {
		if ctx.Err() != nil {
			return SeasonForecast{}, ctx.Err()
		}
		return SeasonForecast{}, classify(err)
	}

	s.logger.InfoContext(ctx, "season simulated",
		"version", st.version,
		"trials", result.Trials,
		"fixtures", result.Fixtures,
		"seed", result.Seed,
	)
	return SeasonForecast{
		Version:  st.version,
		Progress: remaining.Progress,
		Complete: remaining.Progress.Complete(),
		Result:   result,
	}, nil
}

// seasonCacheKey includes the seed so seeded runs stay reproducible. Unseeded
// runs share one entry per log version.
func seasonCacheKey(version uint64, trials int, seed *uint64) string {
	seedPart := "auto"
	if seed != nil {
		seedPart = strconv.FormatUint(*seed, 10)
	}
	return fmt.Sprintf("season:%d:%d:%s", version, trials, seedPart)
}
