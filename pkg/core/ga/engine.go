package ga

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"github.com/jakechorley/nurse-rota/pkg/core/instance"
)

// generationLogInterval controls how often generation progress is logged at debug level
const generationLogInterval = 50

// RunRecord is the outcome of one independent run
type RunRecord struct {
	// Run is the zero-based run index within the experiment
	Run int

	// Seed is the seed of the stream the run consumed. Sequential experiments share
	// one stream, so every run reports the experiment seed.
	Seed uint64

	// History holds the best cost of each ranked generation, in order
	History []float64

	// BestCost is the cost of Best. It always equals the last History entry.
	BestCost float64

	// Best is the best individual of the final ranked generation
	Best []int

	// Penalty is the decomposed cost of Best
	Penalty Penalty

	// Duration is the wall-clock time of the run
	Duration time.Duration
}

// Engine evolves one population per run against a fixed instance
type Engine struct {
	inst     *instance.Instance
	params   Params
	workers  int
	logger   *zap.Logger
	observer Observer
}

// NewEngine validates params and creates an engine
func NewEngine(inst *instance.Instance, params Params, opts ...Option) (*Engine, error) {
	if inst == nil {
		return nil, instance.NewConfigurationError("instance", "must not be nil")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	return &Engine{
		inst:     inst,
		params:   params,
		workers:  max(params.Workers, 1),
		logger:   o.logger,
		observer: o.observer,
	}, nil
}

// Run executes one full run consuming rng.
//
// Every generation is ranked and its best cost recorded before offspring are bred:
// the best EliteCount individuals are carried over, and the rest of the next
// generation are children of two distinct parents drawn from the top PoolSize,
// produced by uniform crossover followed by mutation. The last ranked generation is
// the run's output, so the reported best always matches the last history entry.
func (e *Engine) Run(ctx context.Context, run int, rng *rand.Rand) (*RunRecord, error) {
	start := time.Now()

	size := e.params.PopulationSize
	length := e.inst.NumTasks()
	elites := EliteCount(size)
	pool := PoolSize(size)

	evaluators := make([]*Evaluator, e.workers)
	for i := range evaluators {
		evaluators[i] = NewEvaluator(e.inst)
	}

	// Two populations: the ranked current one and the one being bred
	current := newPopulation(size, length)
	next := newPopulation(size, length)
	ranked := make([]*Individual, size)

	for i := range current {
		Generate(e.inst, rng, current[i].Genes)
		ranked[i] = &current[i]
	}
	e.evaluate(current, evaluators)

	history := make([]float64, 0, e.params.Generations)

	for gen := 0; gen < e.params.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run %d stopped at generation %d: %w", run, gen, err)
		}

		rankPopulation(ranked)
		best := ranked[0].Cost
		history = append(history, best)
		e.observer.GenerationCompleted(run, gen, best)

		if gen%generationLogInterval == 0 {
			e.logger.Debug("Generation ranked",
				zap.Int("run", run),
				zap.Int("generation", gen),
				zap.Float64("best_cost", best))
		}

		if gen == e.params.Generations-1 {
			break
		}

		// Elitism
		for i := 0; i < elites; i++ {
			copy(next[i].Genes, ranked[i].Genes)
			next[i].Cost = ranked[i].Cost
		}

		// Offspring
		for i := elites; i < size; i++ {
			a, b := selectParents(rng, pool)
			child := next[i].Genes
			Crossover(rng, ranked[a].Genes, ranked[b].Genes, child)
			Mutate(e.inst, rng, child, e.params.MutationRate)
		}
		e.evaluate(next[elites:], evaluators)

		current, next = next, current
		for i := range current {
			ranked[i] = &current[i]
		}
	}

	bestInd := ranked[0]
	record := &RunRecord{
		Run:      run,
		History:  history,
		BestCost: bestInd.Cost,
		Best:     bestInd.Clone().Genes,
		Penalty:  evaluators[0].Breakdown(bestInd.Genes),
		Duration: time.Since(start),
	}

	if last := history[len(history)-1]; record.BestCost != last {
		return nil, fmt.Errorf("run %d: final best cost %v does not match last recorded generation %v", run, record.BestCost, last)
	}

	return record, nil
}

// evaluate computes the cost of every individual in pop, splitting the work across
// one goroutine per evaluator when there is more than one
func (e *Engine) evaluate(pop []Individual, evaluators []*Evaluator) {
	defer e.observer.EvaluationsCompleted(len(pop))

	if len(evaluators) == 1 || len(pop) < 2 {
		for i := range pop {
			pop[i].Cost = evaluators[0].Evaluate(pop[i].Genes)
		}
		return
	}

	workChan := make(chan int, len(pop))
	for i := range pop {
		workChan <- i
	}
	close(workChan)

	wg := &sync.WaitGroup{}
	for _, evaluator := range evaluators {
		wg.Add(1)
		go func(ev *Evaluator) {
			defer wg.Done()
			for i := range workChan {
				pop[i].Cost = ev.Evaluate(pop[i].Genes)
			}
		}(evaluator)
	}
	wg.Wait()
}
