package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jakechorley/nurse-rota/pkg/core/services"
)

// Interactive modes, in menu order
var interactiveModes = []string{"standard", "sweep"}

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (pick an instance and parameters from a menu)",
		Long: `Start an interactive session that asks for an instance, a mode and the algorithm
parameters, then runs the solve or sweep command with them.
Press Enter to accept the default shown in brackets. The session ends on end of input
or when you decline to run another experiment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\n🚀 Starting interactive session...")

			names, err := services.ListInstances(app.Cfg, app.Logger)
			if err != nil {
				return err
			}

			p := newPrompter(cmd.InOrStdin(), out)

			for {
				argv, err := promptExperiment(p, app, names)
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}

				if err := runCommand(cmd, argv); err != nil {
					fmt.Fprintf(out, "❌ Error: %v\n\n", err)
				}

				again, err := p.confirm("Run another experiment")
				if errors.Is(err, io.EOF) || (err == nil && !again) {
					break
				}
				if err != nil {
					return err
				}
			}

			fmt.Fprintln(out, "\n👋 Goodbye!")
			return nil
		},
	}

	return cmd
}

// promptExperiment asks for the instance, mode and parameters and returns the
// equivalent command line
func promptExperiment(p *prompter, app *AppContext, names []string) ([]string, error) {
	fmt.Fprintln(p.out, "\nAvailable instances:")
	instanceIdx, err := p.askChoice("Instance", names, 0)
	if err != nil {
		return nil, err
	}
	instanceName := names[instanceIdx]

	fmt.Fprintln(p.out, "\nModes:")
	mode, err := p.askChoice("Mode", interactiveModes, 0)
	if err != nil {
		return nil, err
	}

	if interactiveModes[mode] == "sweep" {
		runs, err := p.askInt("Runs per parameter set", app.Cfg.Sweep.Runs)
		if err != nil {
			return nil, err
		}
		return []string{"sweep", instanceName, "--" + flagRuns, strconv.Itoa(runs)}, nil
	}

	defaults := app.Cfg.GA
	population, err := p.askInt("Population size", defaults.PopulationSize)
	if err != nil {
		return nil, err
	}
	generations, err := p.askInt("Generations", defaults.Generations)
	if err != nil {
		return nil, err
	}
	mutation, err := p.askFloat("Mutation rate", defaults.MutationRate)
	if err != nil {
		return nil, err
	}
	runs, err := p.askInt("Runs", defaults.Runs)
	if err != nil {
		return nil, err
	}

	return []string{
		"solve", instanceName,
		"--" + flagPopulation, strconv.Itoa(population),
		"--" + flagGenerations, strconv.Itoa(generations),
		"--" + flagMutation, strconv.FormatFloat(mutation, 'g', -1, 64),
		"--" + flagRuns, strconv.Itoa(runs),
	}, nil
}

// runCommand executes a sibling command's RunE directly, bypassing the full Execute()
// flow so PersistentPreRunE does not initialise the app again
func runCommand(cmd *cobra.Command, argv []string) error {
	var target *cobra.Command
	for _, sub := range cmd.Parent().Commands() {
		if sub.Name() == argv[0] {
			target = sub
			break
		}
	}
	if target == nil || target.RunE == nil {
		return fmt.Errorf("unknown command: %s", argv[0])
	}

	// Reset command flags left over from a previous experiment
	target.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		flag.Value.Set(flag.DefValue)
	})

	if err := target.ParseFlags(argv[1:]); err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}

	args := target.Flags().Args()
	if target.Args != nil {
		if err := target.Args(target, args); err != nil {
			return err
		}
	}

	return target.RunE(target, args)
}
