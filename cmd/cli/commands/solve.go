package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/nurse-rota/pkg/core/services"
)

// maxListedViolations caps the violations printed after a solve; the full list is in the log
const maxListedViolations = 20

// SolveCmd creates the solve command
func SolveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <instance>",
		Short: "Solve an instance with the genetic algorithm and write the summary and charts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instanceName := args[0]

			params, err := applyFlags(cmd.Flags(), app.Cfg.GA.Params())
			if err != nil {
				return err
			}

			cfg := *app.Cfg
			if noPlot, _ := cmd.Flags().GetBool("no-plot"); noPlot {
				cfg.Plot.Formats = nil
			}

			app.Logger.Debug("solve command", zap.String("instance", instanceName))

			solved, err := services.Solve(app.Ctx, app.Store, &cfg, app.Logger, instanceName, params, app.Observers(instanceName)...)
			if err != nil {
				return err
			}

			printSolveResult(cmd.OutOrStdout(), solved)
			return nil
		},
	}

	addParamFlags(cmd)
	cmd.Flags().Bool("no-plot", false, "Skip the convergence charts")

	return cmd
}

func printSolveResult(out io.Writer, solved *services.SolveResult) {
	result := solved.Result

	fmt.Fprintf(out, "\n✓ Solved instance %s (%d runs)\n\n", solved.Dataset.Name, len(result.Runs))
	fmt.Fprintf(out, "Tasks:          %d\n", solved.Instance.NumTasks())
	fmt.Fprintf(out, "Nurses:         %d\n", solved.Instance.NumNurses())
	fmt.Fprintf(out, "Best cost:      %g (run %d)\n", result.GlobalBest, result.BestRun+1)
	fmt.Fprintf(out, "Mean best cost: %.2f\n", result.MeanBest)
	fmt.Fprintf(out, "Mean run time:  %.2fs\n\n", result.MeanDuration.Seconds())

	fmt.Fprintf(out, "Runs:\n")
	for _, rec := range result.Runs {
		fmt.Fprintf(out, "  %2d. cost %-10g skill deficit %-8g workload excess %-8g %.2fs\n",
			rec.Run+1, rec.BestCost, rec.Penalty.SkillDeficit, rec.Penalty.WorkloadExcess, rec.Duration.Seconds())
	}
	fmt.Fprintln(out)

	if solved.Report.Feasible() {
		fmt.Fprintln(out, "✓ Best roster breaks no constraint")
	} else {
		fmt.Fprintf(out, "⚠️  Best roster has %d violations:\n", len(solved.Report.Violations))
		for i, v := range solved.Report.Violations {
			if i == maxListedViolations {
				fmt.Fprintf(out, "  ... and %d more\n", len(solved.Report.Violations)-maxListedViolations)
				break
			}
			fmt.Fprintf(out, "  ✗ [%s] %s\n", v.ConstraintName, v.Description)
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Summary: %s\n", solved.SummaryPath)
	for _, path := range solved.PlotPaths {
		fmt.Fprintf(out, "Chart:   %s\n", path)
	}
	if solved.ExperimentID != "" {
		fmt.Fprintf(out, "Experiment ID: %s\n", solved.ExperimentID)
	}
	fmt.Fprintln(out)
}
