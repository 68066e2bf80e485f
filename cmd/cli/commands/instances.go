package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/nurse-rota/pkg/core/services"
)

// InstancesCmd creates the instances command
func InstancesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "instances",
		Short: "List the instances found in the instances directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := services.ListInstances(app.Cfg, app.Logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nFound %d instances in %s:\n\n", len(names), app.Cfg.InstancesDir)
			for i, name := range names {
				fmt.Fprintf(out, "  %2d. %s\n", i+1, name)
			}
			fmt.Fprintln(out)

			return nil
		},
	}
}
