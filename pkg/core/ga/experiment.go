package ga

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/nurse-rota/pkg/core/instance"
)

// RunFunc executes a single run. The engine's Run method is the default; tests swap
// in stubs to exercise aggregation.
type RunFunc func(ctx context.Context, run int, rng *rand.Rand) (*RunRecord, error)

// ExperimentResult aggregates the records of all runs of an experiment
type ExperimentResult struct {
	// GlobalBest is the lowest final best cost across runs
	GlobalBest float64

	// MeanBest is the arithmetic mean of the runs' final best costs
	MeanBest float64

	// MeanDuration is the arithmetic mean of the runs' wall-clock durations
	MeanDuration time.Duration

	// BestRun is the index of the first run that reached GlobalBest
	BestRun int

	// Best is the best individual of BestRun
	Best []int

	// Runs holds every run record in run order
	Runs []*RunRecord
}

// MeanHistory returns the mean best cost per generation across runs, the curve the
// convergence plots draw on top of the individual runs
func (r *ExperimentResult) MeanHistory() []float64 {
	if len(r.Runs) == 0 {
		return nil
	}

	length := len(r.Runs[0].History)
	for _, rec := range r.Runs[1:] {
		length = min(length, len(rec.History))
	}

	mean := make([]float64, length)
	for _, rec := range r.Runs {
		for gen := 0; gen < length; gen++ {
			mean[gen] += rec.History[gen]
		}
	}
	for gen := range mean {
		mean[gen] /= float64(len(r.Runs))
	}
	return mean
}

// Option customises an engine or experiment
type Option func(*options)

type options struct {
	logger   *zap.Logger
	observer Observer
	runFunc  RunFunc
}

// WithLogger sets the logger used for run and generation progress
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers observers for progress notifications
func WithObserver(observers ...Observer) Option {
	return func(o *options) {
		if len(observers) > 0 {
			o.observer = Observers(observers)
		}
	}
}

// WithRunFunc replaces the function executing each run
func WithRunFunc(fn RunFunc) Option {
	return func(o *options) {
		o.runFunc = fn
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunExperiment executes params.Runs independent runs and aggregates their results.
//
// Sequential experiments (the default) consume a single stream seeded with
// params.Seed in run order. With ParallelRuns each run gets its own stream seeded by
// DeriveSeed(params.Seed, run), so per-run results do not depend on scheduling.
//
// Returns a *instance.ConfigurationError if params are invalid.
func RunExperiment(ctx context.Context, inst *instance.Instance, params Params, opts ...Option) (*ExperimentResult, error) {
	o := buildOptions(opts)

	engineParams := params
	if params.ParallelRuns {
		// Runs already use the workers, keep evaluation inside each run sequential
		engineParams.Workers = 1
	}

	engine, err := NewEngine(inst, engineParams, opts...)
	if err != nil {
		return nil, err
	}

	runFunc := o.runFunc
	if runFunc == nil {
		runFunc = engine.Run
	}

	o.logger.Info("Starting experiment",
		zap.Int("runs", params.Runs),
		zap.Int("population_size", params.PopulationSize),
		zap.Int("generations", params.Generations),
		zap.Float64("mutation_rate", params.MutationRate),
		zap.Uint64("seed", params.Seed),
		zap.Bool("parallel_runs", params.ParallelRuns))

	records := make([]*RunRecord, params.Runs)

	if params.ParallelRuns {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(params.Workers, 1))

		for run := 0; run < params.Runs; run++ {
			g.Go(func() error {
				seed := DeriveSeed(params.Seed, run)
				rec, err := runFunc(gctx, run, rand.New(rand.NewSource(seed)))
				if err != nil {
					return fmt.Errorf("run %d failed: %w", run+1, err)
				}
				rec.Seed = seed
				records[run] = rec
				o.observer.RunCompleted(rec)
				logRun(o.logger, rec, params.Runs)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		rng := rand.New(rand.NewSource(params.Seed))

		for run := 0; run < params.Runs; run++ {
			rec, err := runFunc(ctx, run, rng)
			if err != nil {
				return nil, fmt.Errorf("run %d failed: %w", run+1, err)
			}
			rec.Seed = params.Seed
			records[run] = rec
			o.observer.RunCompleted(rec)
			logRun(o.logger, rec, params.Runs)
		}
	}

	result, err := Aggregate(records)
	if err != nil {
		return nil, err
	}

	o.logger.Info("Experiment completed",
		zap.Float64("global_best", result.GlobalBest),
		zap.Float64("mean_best", result.MeanBest),
		zap.Duration("mean_duration", result.MeanDuration))

	return result, nil
}

func logRun(logger *zap.Logger, rec *RunRecord, runs int) {
	logger.Info("Run completed",
		zap.Int("run", rec.Run+1),
		zap.Int("of", runs),
		zap.Float64("best_cost", rec.BestCost),
		zap.Duration("duration", rec.Duration))
}

// Aggregate computes the experiment statistics from run records
func Aggregate(records []*RunRecord) (*ExperimentResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("cannot aggregate an experiment without runs")
	}
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("run %d produced no record", i+1)
		}
	}

	result := &ExperimentResult{
		GlobalBest: records[0].BestCost,
		Best:       records[0].Best,
		Runs:       records,
	}

	totalBest := 0.0
	var totalDuration time.Duration
	for i, rec := range records {
		totalBest += rec.BestCost
		totalDuration += rec.Duration

		if rec.BestCost < result.GlobalBest {
			result.GlobalBest = rec.BestCost
			result.BestRun = i
			result.Best = rec.Best
		}
	}

	result.MeanBest = totalBest / float64(len(records))
	result.MeanDuration = totalDuration / time.Duration(len(records))

	return result, nil
}

// DeriveSeed mixes a base seed with a run index (splitmix64) so parallel runs get
// independent, reproducible streams
func DeriveSeed(base uint64, run int) uint64 {
	z := base + uint64(run+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
