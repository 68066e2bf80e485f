package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/nurse-rota/internal/config"
	"github.com/jakechorley/nurse-rota/pkg/ihtc"
)

// ListInstances returns the instance folders found in the configured instances directory
func ListInstances(cfg *config.Config, logger *zap.Logger) ([]string, error) {
	names, err := ihtc.ListInstances(cfg.InstancesDir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no instances found in %s", cfg.InstancesDir)
	}

	logger.Debug("Found instances", zap.String("dir", cfg.InstancesDir), zap.Int("count", len(names)))
	return names, nil
}
