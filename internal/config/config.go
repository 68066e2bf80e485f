package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/nurse-rota/pkg/core/ga"
)

// FileName is the config file looked up in the working directory, then the home directory
const FileName = "nra_config.yaml"

// EnvPrefix prefixes every environment override, e.g. NRA_GA_SEED
const EnvPrefix = "NRA_"

// GAConfig holds the genetic algorithm parameters of a single solve
type GAConfig struct {
	PopulationSize int     `yaml:"populationSize" env:"POPULATION_SIZE" validate:"min=4"`
	Generations    int     `yaml:"generations" env:"GENERATIONS" validate:"min=1"`
	MutationRate   float64 `yaml:"mutationRate" env:"MUTATION_RATE" validate:"min=0,max=1"`
	Runs           int     `yaml:"runs" env:"RUNS" validate:"min=1"`
	Seed           uint64  `yaml:"seed" env:"SEED"`
	Workers        int     `yaml:"workers" env:"WORKERS" validate:"min=0"`
	ParallelRuns   bool    `yaml:"parallelRuns" env:"PARALLEL_RUNS"`
}

// SweepEntry is one parameter set of a sweep
type SweepEntry struct {
	PopulationSize int     `yaml:"populationSize" validate:"min=4"`
	Generations    int     `yaml:"generations" validate:"min=1"`
	MutationRate   float64 `yaml:"mutationRate" validate:"min=0,max=1"`
}

// SweepConfig defines the parameter grid run by the sweep command
type SweepConfig struct {
	Runs    int          `yaml:"runs" env:"RUNS" validate:"min=1"`
	Configs []SweepEntry `yaml:"configs" env:"-" validate:"required,min=1,dive"`
}

// PlotConfig selects the convergence chart formats written after a solve
type PlotConfig struct {
	Formats []string `yaml:"formats" env:"FORMATS" envSeparator:"," validate:"dive,oneof=png html"`
}

// Config represents the application configuration
type Config struct {
	InstancesDir string `yaml:"instancesDir" env:"INSTANCES_DIR" validate:"required"`
	OutputDir    string `yaml:"outputDir" env:"OUTPUT_DIR" validate:"required"`
	LogsDir      string `yaml:"logsDir" env:"LOGS_DIR" validate:"required"`

	// DatabaseURL enables experiment history when set
	DatabaseURL string `yaml:"databaseURL,omitempty" env:"DATABASE_URL"`

	// MetricsAddr serves Prometheus metrics while a command runs when set, e.g. ":9090"
	MetricsAddr string `yaml:"metricsAddr,omitempty" env:"METRICS_ADDR"`

	GA    GAConfig    `yaml:"ga" envPrefix:"GA_"`
	Sweep SweepConfig `yaml:"sweep" envPrefix:"SWEEP_"`
	Plot  PlotConfig  `yaml:"plot" envPrefix:"PLOT_"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		InstancesDir: "ihtc2024-nra",
		OutputDir:    "results",
		LogsDir:      "logs",
		GA: GAConfig{
			PopulationSize: 100,
			Generations:    500,
			MutationRate:   0.05,
			Runs:           5,
			Seed:           42,
		},
		Sweep: SweepConfig{
			Runs: 5,
			Configs: []SweepEntry{
				{PopulationSize: 100, Generations: 100, MutationRate: 0.05},
				{PopulationSize: 100, Generations: 250, MutationRate: 0.05},
				{PopulationSize: 100, Generations: 500, MutationRate: 0.05},
			},
		},
		Plot: PlotConfig{
			Formats: []string{"png"},
		},
	}
}

// Load builds the configuration from nra_config.yaml when one is found, otherwise
// from the defaults, then applies environment overrides and validates
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := applyEnv(cfg); err != nil {
			return nil, err
		}
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads the configuration from a specific path. Fields missing from the
// file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides fields from NRA_ prefixed environment variables
func applyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return fmt.Errorf("failed to apply environment overrides: %w", aggErr.Errors[0])
		}
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}

// Validate validates the configuration struct and the derived algorithm parameters
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.MetricsAddr); err != nil {
			return fmt.Errorf("invalid metricsAddr %q: %w", cfg.MetricsAddr, err)
		}
	}

	if err := cfg.GA.Params().Validate(); err != nil {
		return fmt.Errorf("invalid ga settings: %w", err)
	}

	for i, params := range cfg.SweepParams() {
		if err := params.Validate(); err != nil {
			return fmt.Errorf("invalid sweep.configs[%d]: %w", i, err)
		}
	}

	return nil
}

// Params converts the settings into algorithm parameters
func (g GAConfig) Params() ga.Params {
	return ga.Params{
		PopulationSize: g.PopulationSize,
		Generations:    g.Generations,
		MutationRate:   g.MutationRate,
		Runs:           g.Runs,
		Seed:           g.Seed,
		Workers:        g.Workers,
		ParallelRuns:   g.ParallelRuns,
	}
}

// SweepParams returns one parameter set per sweep entry. Seed, workers and run
// parallelism come from the ga section.
func (cfg *Config) SweepParams() []ga.Params {
	params := make([]ga.Params, len(cfg.Sweep.Configs))
	for i, entry := range cfg.Sweep.Configs {
		p := cfg.GA.Params()
		p.PopulationSize = entry.PopulationSize
		p.Generations = entry.Generations
		p.MutationRate = entry.MutationRate
		p.Runs = cfg.Sweep.Runs
		params[i] = p
	}
	return params
}

// findConfigFile searches for nra_config.yaml in current directory and home directory.
// Returns an error wrapping os.ErrNotExist when neither has one.
func findConfigFile() (string, error) {
	// Check current directory
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, FileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory: %w", os.ErrNotExist)
}
