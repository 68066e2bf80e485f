package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/nurse-rota/internal/config"
	"github.com/jakechorley/nurse-rota/pkg/core/ga"
	"github.com/jakechorley/nurse-rota/pkg/db"
	"github.com/jakechorley/nurse-rota/pkg/metrics"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg *config.Config

	// Store is nil when no database is configured
	Store db.ExperimentStore

	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Ctx     context.Context
}

// Observers returns the progress observers for a solve or sweep of instanceName
func (app *AppContext) Observers(instanceName string) []ga.Observer {
	if app.Metrics == nil {
		return nil
	}
	return []ga.Observer{app.Metrics.Observer(instanceName)}
}
