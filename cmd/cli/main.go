package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/nurse-rota/cmd/cli/commands"
	"github.com/jakechorley/nurse-rota/internal/config"
	"github.com/jakechorley/nurse-rota/pkg/metrics"
	"github.com/jakechorley/nurse-rota/pkg/postgres"
	"github.com/jakechorley/nurse-rota/pkg/utils/logging"
)

var (
	env     string
	verbose bool

	// app is filled in by initApp before any command runs
	app = &commands.AppContext{}

	database *postgres.DB
	stop     context.CancelFunc
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nra",
		Short: "Nurse rota CLI - Assign nurses to occupied rooms with a genetic algorithm",
		Long: `A CLI tool that assigns nurses to occupied room shifts of IHTC instances, minimising
skill deficits and workload excess with a genetic algorithm.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeApp()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "local", "Environment name, used to prefix the log file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs, including generation progress")

	rootCmd.AddCommand(commands.SolveCmd(app))
	rootCmd.AddCommand(commands.SweepCmd(app))
	rootCmd.AddCommand(commands.HistoryCmd(app))
	rootCmd.AddCommand(commands.InstancesCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		closeApp()
		os.Exit(1)
	}
}

// initApp sets up config, logger, metrics, and database
func initApp() error {
	var err error

	app.Ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt)

	// Load configuration
	app.Cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	var logFile string
	app.Logger, logFile, err = logging.InitLogger(logging.Options{
		Env:     env,
		LogsDir: app.Cfg.LogsDir,
		Verbose: verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Debug("Starting application",
		zap.String("environment", env),
		zap.String("log_file", logFile),
		zap.String("instances_dir", app.Cfg.InstancesDir),
		zap.String("output_dir", app.Cfg.OutputDir))

	// Initialize metrics
	app.Metrics = metrics.New()
	if app.Cfg.MetricsAddr != "" {
		go func() {
			if err := app.Metrics.Serve(app.Ctx, app.Cfg.MetricsAddr, app.Logger); err != nil {
				app.Logger.Error("Metrics server stopped", zap.Error(err))
			}
		}()
	}

	// Connect to database
	if app.Cfg.DatabaseURL != "" {
		app.Logger.Debug("Connecting to database")
		database, err = postgres.Open(app.Ctx, app.Cfg.DatabaseURL, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.Store = database
		app.Logger.Debug("Database initialized successfully")
	}

	return nil
}

// closeApp releases what initApp acquired; safe to call more than once
func closeApp() {
	if database != nil {
		database.Close()
		database = nil
	}
	if stop != nil {
		stop()
		stop = nil
	}
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
}
