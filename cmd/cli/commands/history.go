package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/nurse-rota/pkg/core/services"
	"github.com/jakechorley/nurse-rota/pkg/db"
)

// HistoryCmd creates the history command
func HistoryCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [instance]",
		Short: "List stored experiments, newest first (requires databaseURL)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var instanceName string
			if len(args) > 0 {
				instanceName = args[0]
			}
			limit, _ := cmd.Flags().GetInt("limit")
			experimentID, _ := cmd.Flags().GetString("experiment")

			app.Logger.Debug("history command",
				zap.String("instance", instanceName),
				zap.Int("limit", limit),
				zap.String("experiment_id", experimentID))

			if experimentID != "" {
				runs, err := services.ExperimentRuns(app.Ctx, app.Store, app.Logger, experimentID)
				if err != nil {
					return err
				}
				printRuns(cmd.OutOrStdout(), experimentID, runs)
				return nil
			}

			experiments, err := services.ListExperiments(app.Ctx, app.Store, app.Logger, instanceName, limit)
			if err != nil {
				return err
			}
			printExperiments(cmd.OutOrStdout(), experiments)
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of experiments to list (0 for all)")
	cmd.Flags().String("experiment", "", "Show the runs of one experiment instead")

	return cmd
}

func printExperiments(out io.Writer, experiments []db.Experiment) {
	if len(experiments) == 0 {
		fmt.Fprintln(out, "\nNo experiments stored yet.")
		return
	}

	fmt.Fprintf(out, "\nFound %d experiments:\n\n", len(experiments))
	fmt.Fprintf(out, "%-36s  %-16s  %-8s  %-6s  %-11s  %-8s  %-4s  %-12s  %-12s  %s\n",
		"ID", "Created", "Instance", "Mode", "Population", "Gens", "Runs", "Best", "Mean", "Mean time")
	fmt.Fprintln(out, strings.Repeat("-", 140))
	for _, e := range experiments {
		fmt.Fprintf(out, "%-36s  %-16s  %-8s  %-6s  %-11d  %-8d  %-4d  %-12g  %-12.2f  %.2fs\n",
			e.ID,
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Instance,
			e.Mode,
			e.PopulationSize,
			e.Generations,
			e.Runs,
			e.GlobalBest,
			e.MeanBest,
			e.MeanDuration.Seconds(),
		)
	}
	fmt.Fprintln(out)
}

func printRuns(out io.Writer, experimentID string, runs []db.Run) {
	fmt.Fprintf(out, "\nRuns of experiment %s:\n\n", experimentID)
	for _, run := range runs {
		first := run.BestCost
		if len(run.History) > 0 {
			first = run.History[0]
		}
		fmt.Fprintf(out, "  %2d. seed %-20d cost %-10g (from %g over %d generations) %.2fs\n",
			run.RunIndex+1, run.Seed, run.BestCost, first, len(run.History), run.Duration.Seconds())
	}
	fmt.Fprintln(out)
}
