package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jakechorley/nurse-rota/pkg/core/ga"
)

// Flag names shared by solve, sweep and the interactive menu
const (
	flagPopulation  = "population"
	flagGenerations = "generations"
	flagMutation    = "mutation"
	flagRuns        = "runs"
	flagSeed        = "seed"
	flagWorkers     = "workers"
	flagParallel    = "parallel"
)

// addRunFlags registers the flags that apply to every experiment
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int(flagRuns, 0, "Independent runs per experiment (default from config)")
	cmd.Flags().Uint64(flagSeed, 0, "Seed for random decisions (default from config)")
	cmd.Flags().Int(flagWorkers, 0, "Goroutines used for evaluation, or for runs with --parallel (default from config)")
	cmd.Flags().Bool(flagParallel, false, "Execute runs concurrently")
}

// addParamFlags registers the algorithm parameter flags of a single solve
func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().Int(flagPopulation, 0, "Population size (default from config)")
	cmd.Flags().Int(flagGenerations, 0, "Generations per run (default from config)")
	cmd.Flags().Float64(flagMutation, 0, "Per-gene mutation rate (default from config)")
	addRunFlags(cmd)
}

// applyFlags overrides params with every flag set on the command line. Flags the
// command does not define are ignored.
func applyFlags(flags *pflag.FlagSet, params ga.Params) (ga.Params, error) {
	var err error

	if flags.Changed(flagPopulation) {
		if params.PopulationSize, err = flags.GetInt(flagPopulation); err != nil {
			return params, err
		}
	}
	if flags.Changed(flagGenerations) {
		if params.Generations, err = flags.GetInt(flagGenerations); err != nil {
			return params, err
		}
	}
	if flags.Changed(flagMutation) {
		if params.MutationRate, err = flags.GetFloat64(flagMutation); err != nil {
			return params, err
		}
	}
	if flags.Changed(flagRuns) {
		if params.Runs, err = flags.GetInt(flagRuns); err != nil {
			return params, err
		}
	}
	if flags.Changed(flagSeed) {
		if params.Seed, err = flags.GetUint64(flagSeed); err != nil {
			return params, err
		}
	}
	if flags.Changed(flagWorkers) {
		if params.Workers, err = flags.GetInt(flagWorkers); err != nil {
			return params, err
		}
	}
	if flags.Changed(flagParallel) {
		if params.ParallelRuns, err = flags.GetBool(flagParallel); err != nil {
			return params, err
		}
	}

	return params, nil
}
