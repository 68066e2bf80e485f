package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/nurse-rota/pkg/core/ga"
	"github.com/jakechorley/nurse-rota/pkg/core/services"
)

// SweepCmd creates the sweep command
func SweepCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep <instance>",
		Short: "Run every configured parameter set on an instance and write one summary row each",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instanceName := args[0]

			paramSets := app.Cfg.SweepParams()
			for i := range paramSets {
				params, err := applyFlags(cmd.Flags(), paramSets[i])
				if err != nil {
					return err
				}
				paramSets[i] = params
			}

			app.Logger.Debug("sweep command", zap.String("instance", instanceName), zap.Int("configs", len(paramSets)))

			swept, err := services.Sweep(app.Ctx, app.Store, app.Cfg, app.Logger, instanceName, paramSets, app.Observers(instanceName)...)
			if err != nil {
				return err
			}

			printSweepResult(cmd.OutOrStdout(), swept, paramSets)
			return nil
		},
	}

	addRunFlags(cmd)

	return cmd
}

func printSweepResult(out io.Writer, swept *services.SweepResult, paramSets []ga.Params) {
	fmt.Fprintf(out, "\n✓ Sweep of instance %s completed (%d parameter sets)\n\n", swept.Dataset.Name, len(swept.Rows))

	fmt.Fprintf(out, "  %-10s %-11s %-9s %-6s %-12s %-12s %s\n",
		"Population", "Generations", "Mutation", "Runs", "Best", "Mean", "Mean time")
	for i, row := range swept.Rows {
		fmt.Fprintf(out, "  %-10d %-11d %-9g %-6d %-12g %-12.2f %.2fs\n",
			row.PopulationSize, row.Generations, row.MutationRate, paramSets[i].Runs,
			row.BestFitness, row.MeanFitness, row.MeanTime.Seconds())
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Summary: %s\n", swept.SummaryPath)
	if swept.SweepID != "" {
		fmt.Fprintf(out, "Sweep ID: %s\n", swept.SweepID)
	}
	fmt.Fprintln(out)
}
