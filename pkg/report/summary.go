package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jakechorley/nurse-rota/pkg/core/ga"
)

// SummaryHeader is the header row of summary CSV files
var SummaryHeader = []string{
	"instance",
	"population",
	"generations",
	"mutation_rate",
	"best_fitness",
	"mean_fitness",
	"mean_time_s",
}

// SummaryRow is one experiment's line in a summary CSV
type SummaryRow struct {
	Instance       string
	PopulationSize int
	Generations    int
	MutationRate   float64
	BestFitness    float64
	MeanFitness    float64
	MeanTime       time.Duration
}

// NewSummaryRow summarises an experiment result
func NewSummaryRow(instanceName string, params ga.Params, result *ga.ExperimentResult) SummaryRow {
	return SummaryRow{
		Instance:       instanceName,
		PopulationSize: params.PopulationSize,
		Generations:    params.Generations,
		MutationRate:   params.MutationRate,
		BestFitness:    result.GlobalBest,
		MeanFitness:    result.MeanBest,
		MeanTime:       result.MeanDuration,
	}
}

// Record returns the row as CSV fields. Mean fitness and mean time are rounded to
// two decimals.
func (r SummaryRow) Record() []string {
	return []string{
		r.Instance,
		strconv.Itoa(r.PopulationSize),
		strconv.Itoa(r.Generations),
		formatFloat(r.MutationRate),
		formatFloat(r.BestFitness),
		formatFloat(round2(r.MeanFitness)),
		formatFloat(round2(r.MeanTime.Seconds())),
	}
}

// ResultFileName is the summary file of a single solve
func ResultFileName(instanceName string) string {
	return fmt.Sprintf("result_ga_%s.csv", instanceName)
}

// SweepFileName is the summary file of a parameter sweep
func SweepFileName(instanceName string) string {
	return fmt.Sprintf("sweep_ga_%s.csv", instanceName)
}

// WriteSummaryCSV writes rows to path with a header, creating parent directories
func WriteSummaryCSV(path string, rows []SummaryRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(SummaryHeader); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.Record()); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush summary file: %w", err)
	}

	return file.Close()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
