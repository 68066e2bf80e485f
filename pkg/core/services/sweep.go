package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/nurse-rota/internal/config"
	"github.com/jakechorley/nurse-rota/pkg/core/ga"
	"github.com/jakechorley/nurse-rota/pkg/db"
	"github.com/jakechorley/nurse-rota/pkg/ihtc"
	"github.com/jakechorley/nurse-rota/pkg/report"
)

// SweepResult contains one summary row and experiment result per parameter set
type SweepResult struct {
	Dataset *ihtc.Dataset
	Rows    []report.SummaryRow
	Results []*ga.ExperimentResult

	SummaryPath string

	// SweepID groups the stored experiments; empty when no database is configured
	SweepID string
}

// Sweep runs an experiment per parameter set on the named instance, in order, and
// writes one summary row per set. No charts are drawn.
func Sweep(
	ctx context.Context,
	database db.ExperimentStore,
	cfg *config.Config,
	logger *zap.Logger,
	instanceName string,
	paramSets []ga.Params,
	observers ...ga.Observer,
) (*SweepResult, error) {
	logger = logger.With(zap.String("instance", instanceName))
	logger.Debug("Starting sweep", zap.Int("configs", len(paramSets)))

	if len(paramSets) == 0 {
		return nil, fmt.Errorf("sweep has no parameter sets")
	}
	for i, params := range paramSets {
		if err := params.Validate(); err != nil {
			return nil, fmt.Errorf("invalid parameter set %d: %w", i+1, err)
		}
	}

	dataset, inst, err := loadInstance(cfg, logger, instanceName)
	if err != nil {
		return nil, err
	}

	swept := &SweepResult{
		Dataset: dataset,
		Rows:    make([]report.SummaryRow, 0, len(paramSets)),
		Results: make([]*ga.ExperimentResult, 0, len(paramSets)),
	}
	if database != nil {
		swept.SweepID = uuid.New().String()
	}

	for i, params := range paramSets {
		setLogger := logger.With(zap.Int("config", i+1))
		setLogger.Info("Running parameter set",
			zap.Int("of", len(paramSets)),
			zap.Int("population_size", params.PopulationSize),
			zap.Int("generations", params.Generations),
			zap.Float64("mutation_rate", params.MutationRate))

		result, err := ga.RunExperiment(ctx, inst, params, ga.WithLogger(setLogger), ga.WithObserver(observers...))
		if err != nil {
			return nil, fmt.Errorf("failed to run parameter set %d: %w", i+1, err)
		}

		swept.Results = append(swept.Results, result)
		swept.Rows = append(swept.Rows, report.NewSummaryRow(instanceName, params, result))

		if database != nil {
			experimentID, err := storeExperiment(ctx, database, inst, instanceName, db.ModeSweep, swept.SweepID, params, result)
			if err != nil {
				return nil, err
			}
			setLogger.Debug("Experiment stored", zap.String("experiment_id", experimentID))
		}
	}

	swept.SummaryPath = filepath.Join(cfg.OutputDir, report.SweepFileName(instanceName))
	if err := report.WriteSummaryCSV(swept.SummaryPath, swept.Rows); err != nil {
		return nil, fmt.Errorf("failed to write sweep summary: %w", err)
	}
	logger.Info("Sweep summary written", zap.String("path", swept.SummaryPath))

	return swept, nil
}
