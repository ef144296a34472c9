package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/panics"

	"github.com/riskibarqy/elo-championship/internal/domain/prediction"
)

// cancelCheckEvery is how many trials a block runs between context checks.
const cancelCheckEvery = 128

// Simulator projects final standings by playing the remaining fixtures many
// times with frozen ratings.
type Simulator struct {
	model         prediction.Model
	initialRating float64
}

func NewSimulator(model prediction.Model, initialRating float64) *Simulator {
	return &Simulator{model: model, initialRating: initialRating}
}

// Run executes cfg.Trials independent seasons. For a fixed seed and trial
// count the result does not depend on cfg.Workers. A cancelled context
// abandons the run and no partial result is returned.
func (s *Simulator) Run(ctx context.Context, in Input, cfg Config) (Result, error) {
	if cfg.Trials <= 0 {
		return Result{}, errors.Wrapf(ErrSimulationConfig, "trials must be > 0, got %d", cfg.Trials)
	}
	if cfg.Workers < 0 {
		return Result{}, errors.Wrapf(ErrSimulationConfig, "workers must be >= 0, got %d", cfg.Workers)
	}

	plan, err := newSeason(in, s.model, s.initialRating)
	if err != nil {
		return Result{}, err
	}

	var seed uint64
	if cfg.Seed != nil {
		seed = *cfg.Seed
	} else {
		seed, err = NewSeed()
		if err != nil {
			return Result{}, err
		}
	}

	var total *tally
	if len(plan.fixtures) == 0 {
		total = newTally(plan.size())
		tr := newTrial(plan.size())
		tr.play(plan, nil)
		total.observe(tr.order, tr.points, int64(cfg.Trials))
	} else {
		total, err = s.runBlocks(ctx, plan, seed, cfg)
		if err != nil {
			return Result{}, err
		}
	}

	teams := total.outcomes(plan)
	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].AveragePosition != teams[j].AveragePosition {
			return teams[i].AveragePosition < teams[j].AveragePosition
		}
		return teams[i].CurrentPosition < teams[j].CurrentPosition
	})

	return Result{
		Trials:   cfg.Trials,
		Seed:     seed,
		Fixtures: len(plan.fixtures),
		Teams:    teams,
	}, nil
}

func (s *Simulator) runBlocks(ctx context.Context, plan *season, seed uint64, cfg Config) (*tally, error) {
	blocks := (cfg.Trials + blockSize - 1) / blockSize
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, blocks)

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		total    = newTally(plan.size())
		firstErr error
		wg       sync.WaitGroup
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for block := 0; block < blocks; block++ {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}

		trials := min(blockSize, cfg.Trials-block*blockSize)
		stream := uint64(block)

		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()

			var catcher panics.Catcher
			catcher.Try(func() {
				local, err := runBlock(ctx, plan, seed, stream, trials)
				if err != nil {
					fail(err)
					return
				}
				mu.Lock()
				total.merge(local)
				mu.Unlock()
			})
			if recovered := catcher.Recovered(); recovered != nil {
				fail(fmt.Errorf("simulation block %d: %w", stream, recovered.AsError()))
			}
		}); err != nil {
			wg.Done()
			fail(fmt.Errorf("submit simulation block: %w", err))
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return total, nil
}

func runBlock(ctx context.Context, plan *season, seed, stream uint64, trials int) (*tally, error) {
	rng := rand.New(rand.NewPCG(seed, stream))
	local := newTally(plan.size())
	tr := newTrial(plan.size())

	for i := 0; i < trials; i++ {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tr.play(plan, rng)
		local.observe(tr.order, tr.points, 1)
	}
	return local, nil
}
