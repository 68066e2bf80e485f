package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/nurse-rota/pkg/db"
)

// InsertExperiment inserts an experiment and its runs in one transaction
func (d *DB) InsertExperiment(ctx context.Context, experiment *db.Experiment, runs []db.Run) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var sweepID *string
	if experiment.SweepID != "" {
		sweepID = &experiment.SweepID
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO experiment (
			id, instance, mode, sweep_id, population_size, generations, mutation_rate,
			runs, seed, parallel_runs, global_best, mean_best, mean_duration_ms, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		experiment.ID, experiment.Instance, experiment.Mode, sweepID,
		experiment.PopulationSize, experiment.Generations, experiment.MutationRate,
		experiment.Runs, int64(experiment.Seed), experiment.ParallelRuns,
		experiment.GlobalBest, experiment.MeanBest, toMillis(experiment.MeanDuration),
		experiment.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert experiment: %w", err)
	}

	batch := &pgx.Batch{}
	for _, r := range runs {
		batch.Queue(`
			INSERT INTO experiment_run (experiment_id, run_index, seed, best_cost, duration_ms, history, assignment)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, experiment.ID, r.RunIndex, int64(r.Seed), r.BestCost, toMillis(r.Duration), r.History, r.Assignment)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert experiment runs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit experiment: %w", err)
	}

	return nil
}

// GetExperiments retrieves experiments newest first. An empty instance returns all
// instances; a limit of 0 or less returns every row.
func (d *DB) GetExperiments(ctx context.Context, instance string, limit int) ([]db.Experiment, error) {
	query := `
		SELECT id, instance, mode, sweep_id, population_size, generations, mutation_rate,
			runs, seed, parallel_runs, global_best, mean_best, mean_duration_ms, created_at
		FROM experiment
		WHERE ($1 = '' OR instance = $1)
		ORDER BY created_at DESC
	`
	args := []any{instance}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query experiments: %w", err)
	}
	defer rows.Close()

	var experiments []db.Experiment
	for rows.Next() {
		var e db.Experiment
		var sweepID *string
		var seed int64
		var meanDurationMs float64
		if err := rows.Scan(
			&e.ID, &e.Instance, &e.Mode, &sweepID, &e.PopulationSize, &e.Generations, &e.MutationRate,
			&e.Runs, &seed, &e.ParallelRuns, &e.GlobalBest, &e.MeanBest, &meanDurationMs, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan experiment: %w", err)
		}
		if sweepID != nil {
			e.SweepID = *sweepID
		}
		e.Seed = uint64(seed)
		e.MeanDuration = fromMillis(meanDurationMs)
		experiments = append(experiments, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating experiments: %w", err)
	}

	return experiments, nil
}

// GetRuns retrieves the runs of an experiment in run order
func (d *DB) GetRuns(ctx context.Context, experimentID string) ([]db.Run, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT experiment_id, run_index, seed, best_cost, duration_ms, history, assignment
		FROM experiment_run
		WHERE experiment_id = $1
		ORDER BY run_index
	`, experimentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query experiment runs: %w", err)
	}
	defer rows.Close()

	var runs []db.Run
	for rows.Next() {
		var r db.Run
		var seed int64
		var durationMs float64
		if err := rows.Scan(&r.ExperimentID, &r.RunIndex, &seed, &r.BestCost, &durationMs, &r.History, &r.Assignment); err != nil {
			return nil, fmt.Errorf("failed to scan experiment run: %w", err)
		}
		r.Seed = uint64(seed)
		r.Duration = fromMillis(durationMs)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating experiment runs: %w", err)
	}

	return runs, nil
}

// Seeds are stored bit-for-bit in BIGINT columns; durations as fractional milliseconds
func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func fromMillis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
