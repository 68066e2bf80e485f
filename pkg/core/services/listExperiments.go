package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/nurse-rota/pkg/db"
)

// ErrHistoryDisabled is returned by history operations when no database is configured
var ErrHistoryDisabled = errors.New("experiment history requires databaseURL to be configured")

// ListExperiments returns stored experiments newest first. An empty instanceName
// lists every instance; limit <= 0 means no limit.
func ListExperiments(ctx context.Context, database db.ExperimentStore, logger *zap.Logger, instanceName string, limit int) ([]db.Experiment, error) {
	if database == nil {
		return nil, ErrHistoryDisabled
	}

	logger.Debug("Fetching experiments", zap.String("instance", instanceName), zap.Int("limit", limit))

	experiments, err := database.GetExperiments(ctx, instanceName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch experiments: %w", err)
	}

	logger.Debug("Found experiments", zap.Int("count", len(experiments)))
	return experiments, nil
}

// ExperimentRuns returns the runs of a stored experiment in run order
func ExperimentRuns(ctx context.Context, database db.ExperimentStore, logger *zap.Logger, experimentID string) ([]db.Run, error) {
	if database == nil {
		return nil, ErrHistoryDisabled
	}

	logger.Debug("Fetching runs", zap.String("experiment_id", experimentID))

	runs, err := database.GetRuns(ctx, experimentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("experiment %s not found", experimentID)
	}

	return runs, nil
}
