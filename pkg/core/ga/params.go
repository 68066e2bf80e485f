package ga

import (
	"github.com/jakechorley/nurse-rota/pkg/core/instance"
)

// Built-in selection fractions
const (
	// EliteFraction is the share of the ranked population copied unchanged into the
	// next generation. The count is truncated, so populations under 10 keep no elites.
	EliteFraction = 0.1

	// PoolFraction is the share of the ranked population parents are sampled from
	PoolFraction = 0.5

	// CrossoverBias is the probability a child gene comes from the first parent
	CrossoverBias = 0.5
)

// Params configures an experiment
type Params struct {
	// PopulationSize is the fixed number of individuals in every generation
	PopulationSize int

	// Generations is the number of ranked generations per run
	Generations int

	// MutationRate is the per-gene resampling probability, in [0, 1]
	MutationRate float64

	// Runs is the number of independent runs aggregated into the result
	Runs int

	// Seed drives every random decision of the experiment
	Seed uint64

	// Workers bounds the goroutines used for child evaluation (and for runs when
	// ParallelRuns is set). 0 or 1 means sequential.
	Workers int

	// ParallelRuns executes runs concurrently, each with its own run-indexed stream
	ParallelRuns bool
}

// EliteCount returns floor(EliteFraction * populationSize)
func EliteCount(populationSize int) int {
	return int(EliteFraction * float64(populationSize))
}

// PoolSize returns floor(PoolFraction * populationSize), the number of top-ranked
// individuals parents are drawn from
func PoolSize(populationSize int) int {
	return int(PoolFraction * float64(populationSize))
}

// Validate checks the parameters, returning a *instance.ConfigurationError
func (p Params) Validate() error {
	if p.PopulationSize <= 0 {
		return instance.NewConfigurationError("populationSize", "must be positive, got %d", p.PopulationSize)
	}
	if p.Generations <= 0 {
		return instance.NewConfigurationError("generations", "must be positive, got %d", p.Generations)
	}
	if p.Runs <= 0 {
		return instance.NewConfigurationError("runs", "must be positive, got %d", p.Runs)
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		return instance.NewConfigurationError("mutationRate", "must be in [0, 1], got %v", p.MutationRate)
	}
	if p.Workers < 0 {
		return instance.NewConfigurationError("workers", "must not be negative, got %d", p.Workers)
	}
	if pool := PoolSize(p.PopulationSize); pool < 2 {
		return instance.NewConfigurationError("populationSize",
			"tournament pool of %d from population %d is smaller than 2 (population must be at least 4)",
			pool, p.PopulationSize)
	}
	return nil
}
