package ga

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/nurse-rota/pkg/core/instance"
)

func TestEliteAndPoolCounts(t *testing.T) {
	tests := []struct {
		population int
		elites     int
		pool       int
	}{
		{population: 1, elites: 0, pool: 0},
		{population: 4, elites: 0, pool: 2},
		{population: 9, elites: 0, pool: 4},
		{population: 10, elites: 1, pool: 5},
		{population: 15, elites: 1, pool: 7},
		{population: 100, elites: 10, pool: 50},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.elites, EliteCount(tt.population), "elites for population %d", tt.population)
		assert.Equal(t, tt.pool, PoolSize(tt.population), "pool for population %d", tt.population)
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
		field  string
	}{
		{name: "valid", mutate: func(p *Params) {}},
		{name: "smallest usable population", mutate: func(p *Params) { p.PopulationSize = 4 }},
		{name: "zero mutation rate", mutate: func(p *Params) { p.MutationRate = 0 }},
		{name: "full mutation rate", mutate: func(p *Params) { p.MutationRate = 1 }},
		{name: "population of one", mutate: func(p *Params) { p.PopulationSize = 1 }, field: "populationSize"},
		{name: "population of three", mutate: func(p *Params) { p.PopulationSize = 3 }, field: "populationSize"},
		{name: "zero population", mutate: func(p *Params) { p.PopulationSize = 0 }, field: "populationSize"},
		{name: "zero generations", mutate: func(p *Params) { p.Generations = 0 }, field: "generations"},
		{name: "zero runs", mutate: func(p *Params) { p.Runs = 0 }, field: "runs"},
		{name: "negative mutation rate", mutate: func(p *Params) { p.MutationRate = -0.01 }, field: "mutationRate"},
		{name: "mutation rate above one", mutate: func(p *Params) { p.MutationRate = 1.5 }, field: "mutationRate"},
		{name: "negative workers", mutate: func(p *Params) { p.Workers = -2 }, field: "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := testParams()
			tt.mutate(&params)

			err := params.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var cfgErr *instance.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
