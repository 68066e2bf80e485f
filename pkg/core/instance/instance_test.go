package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	r1s1 := Task{Room: "R1", Shift: "S1"}
	r2s1 := Task{Room: "R2", Shift: "S1"}
	r1s2 := Task{Room: "R1", Shift: "S2"}

	return Input{
		Skill: map[string]int{"A": 3, "B": 1, "C": 2},
		Capacity: map[NurseShift]float64{
			{Nurse: "A", Shift: "S1"}: 10,
			{Nurse: "B", Shift: "S1"}: 8,
			{Nurse: "B", Shift: "S2"}: 6,
			{Nurse: "C", Shift: "S2"}: 12,
		},
		Availability: map[string][]string{
			"S1": {"A", "B"},
			"S2": {"C", "B", "C"},
		},
		Tasks:         []Task{r1s1, r2s1, r1s2},
		RequiredSkill: map[Task]int{r1s1: 3, r2s1: 1, r1s2: 2},
		Workload:      map[Task]float64{r1s1: 5, r2s1: 4, r1s2: 7},
		Weights:       Weights{Skill: 2, Workload: 0.5},
	}
}

func TestBuild(t *testing.T) {
	inst, err := Build(validInput())
	require.NoError(t, err)

	assert.Equal(t, 3, inst.NumTasks())
	assert.Equal(t, 3, inst.NumNurses())
	assert.Equal(t, 2, inst.NumShifts())
	assert.Equal(t, Weights{Skill: 2, Workload: 0.5}, inst.Weights())

	// Tasks keep their input order
	assert.Equal(t, Task{Room: "R1", Shift: "S2"}, inst.Task(2))
	assert.Equal(t, "S2", inst.ShiftID(inst.TaskShift(2)))
	assert.Equal(t, 2, inst.RequiredSkill(2))
	assert.Equal(t, 7.0, inst.Workload(2))

	// Nurses are interned shift by shift in availability order
	assert.Equal(t, "A", inst.NurseID(0))
	assert.Equal(t, "B", inst.NurseID(1))
	assert.Equal(t, "C", inst.NurseID(2))

	c, ok := inst.NurseIndex("C")
	require.True(t, ok)
	assert.Equal(t, 2, inst.Skill(c))
	assert.Equal(t, 12.0, inst.Capacity(c, inst.TaskShift(2)))

	_, ok = inst.NurseIndex("missing")
	assert.False(t, ok)
}

func TestBuild_Eligibility(t *testing.T) {
	inst, err := Build(validInput())
	require.NoError(t, err)

	// Tasks in S1 draw from A and B
	assert.Equal(t, []int{0, 1}, inst.Eligible(0))
	assert.Equal(t, []int{0, 1}, inst.Eligible(1))

	// Duplicate C in the S2 list is dropped
	assert.Equal(t, []int{2, 1}, inst.Eligible(2))

	assert.True(t, inst.IsEligible(0, 1))
	assert.False(t, inst.IsEligible(0, 2))
	assert.False(t, inst.IsEligible(2, 0))
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *Input)
		field  string
	}{
		{
			name:   "negative skill weight",
			mutate: func(in *Input) { in.Weights.Skill = -1 },
			field:  "weights.skill",
		},
		{
			name:   "negative workload weight",
			mutate: func(in *Input) { in.Weights.Workload = -0.1 },
			field:  "weights.workload",
		},
		{
			name:   "no tasks",
			mutate: func(in *Input) { in.Tasks = nil },
			field:  "tasks",
		},
		{
			name:   "shift without availability",
			mutate: func(in *Input) { delete(in.Availability, "S2") },
			field:  "availability",
		},
		{
			name:   "available nurse without skill",
			mutate: func(in *Input) { delete(in.Skill, "A") },
			field:  "skill",
		},
		{
			name:   "available nurse without capacity",
			mutate: func(in *Input) { delete(in.Capacity, NurseShift{Nurse: "B", Shift: "S2"}) },
			field:  "capacity",
		},
		{
			name:   "task without required skill",
			mutate: func(in *Input) { delete(in.RequiredSkill, Task{Room: "R2", Shift: "S1"}) },
			field:  "requiredSkill",
		},
		{
			name:   "task without workload",
			mutate: func(in *Input) { delete(in.Workload, Task{Room: "R1", Shift: "S2"}) },
			field:  "workload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			inst, err := Build(in)
			require.Error(t, err)
			assert.Nil(t, inst)
			assert.True(t, IsConfigurationError(err))

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestBuild_ZeroWeightsAllowed(t *testing.T) {
	in := validInput()
	in.Weights = Weights{}

	_, err := Build(in)
	assert.NoError(t, err)
}

func TestBuild_DoesNotAliasInput(t *testing.T) {
	in := validInput()
	inst, err := Build(in)
	require.NoError(t, err)

	in.Tasks[0] = Task{Room: "changed", Shift: "S1"}
	assert.Equal(t, "R1", inst.Task(0).Room)
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("populationSize", "must be positive, got %d", 0)
	assert.Equal(t, "configuration error: populationSize: must be positive, got 0", err.Error())

	wrapped := error(err)
	assert.True(t, IsConfigurationError(wrapped))
	assert.False(t, IsConfigurationError(assert.AnError))
}
