package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/nurse-rota/pkg/core/ga"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidate_DefaultConfig(t *testing.T) {
	err := Validate(Default())
	assert.NoError(t, err)
}

func TestDefault_Params(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ga.Params{
		PopulationSize: 100,
		Generations:    500,
		MutationRate:   0.05,
		Runs:           5,
		Seed:           42,
	}, cfg.GA.Params())

	sweep := cfg.SweepParams()
	require.Len(t, sweep, 3)
	assert.Equal(t, []int{100, 250, 500}, []int{sweep[0].Generations, sweep[1].Generations, sweep[2].Generations})
	for _, p := range sweep {
		assert.Equal(t, 100, p.PopulationSize)
		assert.Equal(t, 0.05, p.MutationRate)
		assert.Equal(t, 5, p.Runs)
		assert.Equal(t, uint64(42), p.Seed)
	}
}

func TestValidate_MissingRequiredField(t *testing.T) {
	cfg := Default()
	cfg.OutputDir = ""

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:    "population too small for a parent pool",
			mutate:  func(cfg *Config) { cfg.GA.PopulationSize = 3 },
			wantErr: "validation failed",
		},
		{
			name:    "mutation rate above one",
			mutate:  func(cfg *Config) { cfg.GA.MutationRate = 1.2 },
			wantErr: "validation failed",
		},
		{
			name:    "negative workers",
			mutate:  func(cfg *Config) { cfg.GA.Workers = -1 },
			wantErr: "validation failed",
		},
		{
			name:    "empty sweep",
			mutate:  func(cfg *Config) { cfg.Sweep.Configs = nil },
			wantErr: "validation failed",
		},
		{
			name:    "invalid sweep entry",
			mutate:  func(cfg *Config) { cfg.Sweep.Configs[1].Generations = 0 },
			wantErr: "validation failed",
		},
		{
			name:    "unknown plot format",
			mutate:  func(cfg *Config) { cfg.Plot.Formats = []string{"png", "svg"} },
			wantErr: "validation failed",
		},
		{
			name:    "metrics address without port",
			mutate:  func(cfg *Config) { cfg.MetricsAddr = "localhost" },
			wantErr: "invalid metricsAddr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_SmallestPopulation(t *testing.T) {
	cfg := Default()
	cfg.GA.PopulationSize = 4
	cfg.Sweep.Configs[0].PopulationSize = 4
	assert.NoError(t, Validate(cfg))
}

func TestLoadFromPath(t *testing.T) {
	path := writeConfig(t, `
instancesDir: data/ihtc2024-nra
outputDir: out
databaseURL: postgres://localhost/nra
metricsAddr: ":9090"
ga:
  populationSize: 50
  generations: 200
  mutationRate: 0.1
  runs: 3
  seed: 7
  workers: 4
  parallelRuns: true
sweep:
  runs: 2
  configs:
    - populationSize: 20
      generations: 10
      mutationRate: 0.2
plot:
  formats: [png, html]
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "data/ihtc2024-nra", cfg.InstancesDir)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "logs", cfg.LogsDir, "unset fields keep their defaults")
	assert.Equal(t, "postgres://localhost/nra", cfg.DatabaseURL)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, GAConfig{
		PopulationSize: 50,
		Generations:    200,
		MutationRate:   0.1,
		Runs:           3,
		Seed:           7,
		Workers:        4,
		ParallelRuns:   true,
	}, cfg.GA)
	assert.Equal(t, []SweepEntry{{PopulationSize: 20, Generations: 10, MutationRate: 0.2}}, cfg.Sweep.Configs)
	assert.Equal(t, []string{"png", "html"}, cfg.Plot.Formats)
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
ga:
  populationSize: 50
  seed: 7
`)

	t.Setenv("NRA_GA_SEED", "1234")
	t.Setenv("NRA_GA_PARALLEL_RUNS", "true")
	t.Setenv("NRA_DATABASE_URL", "postgres://env/nra")
	t.Setenv("NRA_PLOT_FORMATS", "html,png")
	t.Setenv("NRA_SWEEP_RUNS", "9")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.GA.PopulationSize)
	assert.Equal(t, uint64(1234), cfg.GA.Seed)
	assert.True(t, cfg.GA.ParallelRuns)
	assert.Equal(t, "postgres://env/nra", cfg.DatabaseURL)
	assert.Equal(t, []string{"html", "png"}, cfg.Plot.Formats)
	assert.Equal(t, 9, cfg.Sweep.Runs)
}

func TestLoadFromPath_InvalidEnvOverride(t *testing.T) {
	path := writeConfig(t, "outputDir: out\n")
	t.Setenv("NRA_GA_GENERATIONS", "many")

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment overrides")
}

func TestLoadFromPath_Errors(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadFromPath(writeConfig(t, "ga: [not, a, map]"))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = LoadFromPath(writeConfig(t, "ga:\n  populationSize: 2\n"))
	assert.ErrorContains(t, err, "validation failed")
}

func TestLoad_FromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("outputDir: from-cwd\n"), 0644))
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-cwd", cfg.OutputDir)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NRA_GA_RUNS", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.GA.Runs)
	assert.Equal(t, "results", cfg.OutputDir)
}
