package ga

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/jakechorley/nurse-rota/pkg/core/instance"
)

// scenarioInput is the two-room example: nurse A (skill 3) covering both rooms is a
// zero-cost roster, and so is A on R1 with B on R2
func scenarioInput() instance.Input {
	r1 := instance.Task{Room: "R1", Shift: "S1"}
	r2 := instance.Task{Room: "R2", Shift: "S1"}

	return instance.Input{
		Skill: map[string]int{"A": 3, "B": 1},
		Capacity: map[instance.NurseShift]float64{
			{Nurse: "A", Shift: "S1"}: 10,
			{Nurse: "B", Shift: "S1"}: 10,
		},
		Availability:  map[string][]string{"S1": {"A", "B"}},
		Tasks:         []instance.Task{r1, r2},
		RequiredSkill: map[instance.Task]int{r1: 3, r2: 1},
		Workload:      map[instance.Task]float64{r1: 5, r2: 5},
		Weights:       instance.Weights{Skill: 1, Workload: 1},
	}
}

func scenarioInstance(t *testing.T) *instance.Instance {
	t.Helper()
	return buildFromInput(t, scenarioInput())
}

// randomInput builds an instance where every shift has a random non-empty subset of
// nurses available, random skills, capacities and workloads
func randomInput(rng *rand.Rand, nurses, shifts, rooms int) instance.Input {
	in := instance.Input{
		Skill:         make(map[string]int),
		Capacity:      make(map[instance.NurseShift]float64),
		Availability:  make(map[string][]string),
		RequiredSkill: make(map[instance.Task]int),
		Workload:      make(map[instance.Task]float64),
		Weights:       instance.Weights{Skill: float64(1 + rng.Intn(5)), Workload: float64(1 + rng.Intn(5))},
	}

	for n := 0; n < nurses; n++ {
		in.Skill[fmt.Sprintf("n%02d", n)] = rng.Intn(4)
	}

	for s := 0; s < shifts; s++ {
		shift := fmt.Sprintf("s%02d", s)
		for n := 0; n < nurses; n++ {
			// Always keep the first nurse so the list is never empty
			if n > 0 && rng.Float64() < 0.4 {
				continue
			}
			nurse := fmt.Sprintf("n%02d", (n+s)%nurses)
			in.Availability[shift] = append(in.Availability[shift], nurse)
			in.Capacity[instance.NurseShift{Nurse: nurse, Shift: shift}] = float64(5 + rng.Intn(20))
		}

		for r := 0; r < rooms; r++ {
			if rng.Float64() < 0.3 {
				continue
			}
			task := instance.Task{Room: fmt.Sprintf("r%02d", r), Shift: shift}
			in.Tasks = append(in.Tasks, task)
			in.RequiredSkill[task] = rng.Intn(4)
			in.Workload[task] = float64(rng.Intn(15))
		}
	}

	// Guarantee at least one task
	if len(in.Tasks) == 0 {
		task := instance.Task{Room: "r00", Shift: "s00"}
		in.Tasks = append(in.Tasks, task)
		in.RequiredSkill[task] = 1
		in.Workload[task] = 3
	}

	return in
}

func randomInstance(t *testing.T, rng *rand.Rand) *instance.Instance {
	t.Helper()
	inst, err := instance.Build(randomInput(rng, 4+rng.Intn(8), 1+rng.Intn(5), 2+rng.Intn(10)))
	require.NoError(t, err)
	return inst
}

// referenceCost is a straightforward map-based version of the objective used to
// cross-check the evaluator
func referenceCost(inst *instance.Instance, genes []int) float64 {
	type key struct{ nurse, shift int }

	skill := 0.0
	load := make(map[key]float64)
	for task, nurse := range genes {
		if deficit := inst.RequiredSkill(task) - inst.Skill(nurse); deficit > 0 {
			skill += float64(deficit)
		}
		load[key{nurse, inst.TaskShift(task)}] += inst.Workload(task)
	}

	workload := 0.0
	for k, total := range load {
		if excess := total - inst.Capacity(k.nurse, k.shift); excess > 0 {
			workload += excess
		}
	}

	w := inst.Weights()
	return w.Skill*skill + w.Workload*workload
}

func assertValidGenes(t *testing.T, inst *instance.Instance, genes []int) {
	t.Helper()
	require.Len(t, genes, inst.NumTasks())
	for task, nurse := range genes {
		require.True(t, inst.IsEligible(task, nurse),
			"gene %d holds nurse %d which is not available in shift %s", task, nurse, inst.Task(task).Shift)
	}
}

func testParams() Params {
	return Params{
		PopulationSize: 20,
		Generations:    30,
		MutationRate:   0.05,
		Runs:           3,
		Seed:           42,
	}
}

func buildFromInput(t *testing.T, in instance.Input) *instance.Instance {
	t.Helper()
	inst, err := instance.Build(in)
	require.NoError(t, err)
	return inst
}
