package ga

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/jakechorley/nurse-rota/pkg/core/instance"
)

func TestEvaluator_Scenario(t *testing.T) {
	inst := scenarioInstance(t)
	ev := NewEvaluator(inst)

	a, ok := inst.NurseIndex("A")
	require.True(t, ok)
	b, ok := inst.NurseIndex("B")
	require.True(t, ok)

	tests := []struct {
		name  string
		genes []int
		want  Penalty
	}{
		{
			name:  "A covers both rooms",
			genes: []int{a, a},
			want:  Penalty{},
		},
		{
			name:  "A on R1 and B on R2",
			genes: []int{a, b},
			want:  Penalty{},
		},
		{
			name:  "B on R1 lacks two skill levels",
			genes: []int{b, a},
			want:  Penalty{SkillDeficit: 2, Cost: 2},
		},
		{
			name:  "B covers both rooms",
			genes: []int{b, b},
			want:  Penalty{SkillDeficit: 2, Cost: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ev.Breakdown(tt.genes))
			assert.Equal(t, tt.want.Cost, ev.Evaluate(tt.genes))
		})
	}
}

func TestEvaluator_WorkloadExcess(t *testing.T) {
	in := scenarioInput()
	for key := range in.Capacity {
		in.Capacity[key] = 4
	}
	in.Weights.Workload = 3

	inst, err := instance.Build(in)
	require.NoError(t, err)
	ev := NewEvaluator(inst)

	a, _ := inst.NurseIndex("A")
	b, _ := inst.NurseIndex("B")

	// A carries 10 against a capacity of 4
	assert.Equal(t, Penalty{WorkloadExcess: 6, Cost: 18}, ev.Breakdown([]int{a, a}))

	// Each nurse carries 5 against 4, B also lacks skill on R1
	assert.Equal(t, Penalty{SkillDeficit: 2, WorkloadExcess: 2, Cost: 2 + 6}, ev.Breakdown([]int{b, a}))
}

func TestEvaluator_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		inst := randomInstance(t, rng)
		ev := NewEvaluator(inst)
		genes := make([]int, inst.NumTasks())

		for j := 0; j < 5; j++ {
			Generate(inst, rng, genes)
			want := referenceCost(inst, genes)

			got := ev.Evaluate(genes)
			assert.InDelta(t, want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)

			// Evaluating again leaves no state behind
			assert.Equal(t, got, ev.Evaluate(genes))
		}
	}
}

func TestEvaluator_ZeroWorkloadTasks(t *testing.T) {
	in := scenarioInput()
	for key := range in.Workload {
		in.Workload[key] = 0
	}
	for key := range in.Capacity {
		in.Capacity[key] = 0
	}

	inst, err := instance.Build(in)
	require.NoError(t, err)
	ev := NewEvaluator(inst)

	a, _ := inst.NurseIndex("A")
	assert.Equal(t, 0.0, ev.Evaluate([]int{a, a}))
	assert.Equal(t, 0.0, ev.Evaluate([]int{a, a}))
}

func TestEvaluator_DoesNotAllocate(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	inst := randomInstance(t, rng)
	ev := NewEvaluator(inst)

	genes := make([]int, inst.NumTasks())
	Generate(inst, rng, genes)

	allocs := testing.AllocsPerRun(100, func() {
		ev.Evaluate(genes)
	})
	assert.Zero(t, allocs)
}

func BenchmarkEvaluate(b *testing.B) {
	rng := rand.New(rand.NewSource(3))
	in := randomInput(rng, 60, 21, 40)
	inst, err := instance.Build(in)
	require.NoError(b, err)

	ev := NewEvaluator(inst)
	genes := make([]int, inst.NumTasks())
	Generate(inst, rng, genes)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ev.Evaluate(genes)
	}
}
