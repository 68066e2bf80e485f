package db

import "context"

// ExperimentStore defines the interface for experiment history operations
type ExperimentStore interface {
	// InsertExperiment stores an experiment and its runs atomically
	InsertExperiment(ctx context.Context, experiment *Experiment, runs []Run) error

	// GetExperiments returns experiments newest first, optionally filtered by instance
	GetExperiments(ctx context.Context, instance string, limit int) ([]Experiment, error)

	// GetRuns returns the runs of an experiment in run order
	GetRuns(ctx context.Context, experimentID string) ([]Run, error)
}
