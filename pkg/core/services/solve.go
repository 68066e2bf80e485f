package services

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/nurse-rota/internal/config"
	"github.com/jakechorley/nurse-rota/pkg/core/ga"
	"github.com/jakechorley/nurse-rota/pkg/core/instance"
	"github.com/jakechorley/nurse-rota/pkg/core/roster"
	"github.com/jakechorley/nurse-rota/pkg/core/roster/constraints"
	"github.com/jakechorley/nurse-rota/pkg/db"
	"github.com/jakechorley/nurse-rota/pkg/ihtc"
	"github.com/jakechorley/nurse-rota/pkg/report"
)

// SolveResult represents the outcome of solving one instance
type SolveResult struct {
	Dataset  *ihtc.Dataset
	Instance *instance.Instance
	Params   ga.Params
	Result   *ga.ExperimentResult

	// Report checks the overall best roster against the weighted constraints
	Report *roster.Report

	SummaryPath string
	PlotPaths   []string

	// ExperimentID is empty when no database is configured
	ExperimentID string
}

// Solve runs params.Runs genetic algorithm runs on the named instance, writes the
// summary CSV and convergence charts to the output directory, and stores the
// experiment when database is not nil
func Solve(
	ctx context.Context,
	database db.ExperimentStore,
	cfg *config.Config,
	logger *zap.Logger,
	instanceName string,
	params ga.Params,
	observers ...ga.Observer,
) (*SolveResult, error) {
	logger = logger.With(zap.String("instance", instanceName))
	logger.Debug("Starting solve")

	// Reject bad parameters before any output is written
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Step 1: Load and index the instance
	dataset, inst, err := loadInstance(cfg, logger, instanceName)
	if err != nil {
		return nil, err
	}

	// Step 2: Run the experiment
	result, err := ga.RunExperiment(ctx, inst, params, ga.WithLogger(logger), ga.WithObserver(observers...))
	if err != nil {
		return nil, fmt.Errorf("failed to solve instance %s: %w", instanceName, err)
	}

	// Step 3: Check the best roster
	rosterReport, err := checkBest(inst, result, logger)
	if err != nil {
		return nil, err
	}

	solved := &SolveResult{
		Dataset:  dataset,
		Instance: inst,
		Params:   params,
		Result:   result,
		Report:   rosterReport,
	}

	// Step 4: Write the summary and charts
	solved.SummaryPath = filepath.Join(cfg.OutputDir, report.ResultFileName(instanceName))
	row := report.NewSummaryRow(instanceName, params, result)
	if err := report.WriteSummaryCSV(solved.SummaryPath, []report.SummaryRow{row}); err != nil {
		return nil, fmt.Errorf("failed to write summary: %w", err)
	}
	logger.Info("Summary written", zap.String("path", solved.SummaryPath))

	solved.PlotPaths, err = report.PlotConvergence(cfg.OutputDir, instanceName, result, cfg.Plot.Formats)
	if err != nil {
		return nil, fmt.Errorf("failed to plot convergence: %w", err)
	}
	for _, path := range solved.PlotPaths {
		logger.Info("Convergence chart written", zap.String("path", path))
	}

	// Step 5: Store the experiment
	if database != nil {
		solved.ExperimentID, err = storeExperiment(ctx, database, inst, instanceName, db.ModeSolve, "", params, result)
		if err != nil {
			return nil, err
		}
		logger.Info("Experiment stored", zap.String("experiment_id", solved.ExperimentID))
	}

	return solved, nil
}

// loadInstance reads <instancesDir>/<instanceName> and builds the indexed instance
func loadInstance(cfg *config.Config, logger *zap.Logger, instanceName string) (*ihtc.Dataset, *instance.Instance, error) {
	dir := filepath.Join(cfg.InstancesDir, instanceName)
	logger.Debug("Loading instance", zap.String("dir", dir))

	dataset, err := ihtc.Load(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load instance %s: %w", instanceName, err)
	}

	inst, err := instance.Build(dataset.Input)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid instance %s: %w", instanceName, err)
	}

	logger.Info("Instance loaded",
		zap.Int("nurse_rows", dataset.NurseRows),
		zap.Int("room_rows", dataset.RoomRows),
		zap.Int("tasks", inst.NumTasks()),
		zap.Int("nurses", inst.NumNurses()),
		zap.Int("shifts", inst.NumShifts()))

	return dataset, inst, nil
}

// checkBest reports the violations of the overall best individual
func checkBest(inst *instance.Instance, result *ga.ExperimentResult, logger *zap.Logger) (*roster.Report, error) {
	best, err := roster.New(inst, result.Best)
	if err != nil {
		return nil, fmt.Errorf("best individual is invalid: %w", err)
	}

	rosterReport := roster.Check(best, constraints.ForInstance(inst)...)

	if math.Abs(rosterReport.Cost-result.GlobalBest) > 1e-6*math.Max(1, math.Abs(result.GlobalBest)) {
		logger.Warn("Roster report cost differs from the run's best cost",
			zap.Float64("report_cost", rosterReport.Cost),
			zap.Float64("global_best", result.GlobalBest))
	}

	logger.Debug("Best roster checked",
		zap.Int("violations", len(rosterReport.Violations)),
		zap.Bool("feasible", rosterReport.Feasible()))

	return rosterReport, nil
}

// storeExperiment inserts the experiment and all of its runs, returning the new ID
func storeExperiment(
	ctx context.Context,
	database db.ExperimentStore,
	inst *instance.Instance,
	instanceName, mode, sweepID string,
	params ga.Params,
	result *ga.ExperimentResult,
) (string, error) {
	experiment := &db.Experiment{
		ID:             uuid.New().String(),
		Instance:       instanceName,
		Mode:           mode,
		SweepID:        sweepID,
		PopulationSize: params.PopulationSize,
		Generations:    params.Generations,
		MutationRate:   params.MutationRate,
		Runs:           params.Runs,
		Seed:           params.Seed,
		ParallelRuns:   params.ParallelRuns,
		GlobalBest:     result.GlobalBest,
		MeanBest:       result.MeanBest,
		MeanDuration:   result.MeanDuration,
		CreatedAt:      time.Now().UTC(),
	}

	runs := make([]db.Run, len(result.Runs))
	for i, rec := range result.Runs {
		assignment := make([]string, len(rec.Best))
		for task, nurse := range rec.Best {
			assignment[task] = inst.NurseID(nurse)
		}

		runs[i] = db.Run{
			ExperimentID: experiment.ID,
			RunIndex:     rec.Run,
			Seed:         rec.Seed,
			BestCost:     rec.BestCost,
			Duration:     rec.Duration,
			History:      rec.History,
			Assignment:   assignment,
		}
	}

	if err := database.InsertExperiment(ctx, experiment, runs); err != nil {
		return "", fmt.Errorf("failed to store experiment: %w", err)
	}

	return experiment.ID, nil
}
