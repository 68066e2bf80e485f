package db

import "time"

// Experiment modes
const (
	ModeSolve = "solve"
	ModeSweep = "sweep"
)

// Experiment represents a database experiment record: one parameter set run R times
// against one instance
type Experiment struct {
	ID       string
	Instance string
	Mode     string

	// SweepID groups the experiments of one parameter sweep; empty for single solves
	SweepID string

	PopulationSize int
	Generations    int
	MutationRate   float64
	Runs           int
	Seed           uint64
	ParallelRuns   bool

	GlobalBest   float64
	MeanBest     float64
	MeanDuration time.Duration

	CreatedAt time.Time
}

// Run represents a database record of one run of an experiment
type Run struct {
	ExperimentID string
	RunIndex     int
	Seed         uint64
	BestCost     float64
	Duration     time.Duration

	// History is the best cost of every generation
	History []float64

	// Assignment holds the nurse ID of every task in instance task order
	Assignment []string
}
