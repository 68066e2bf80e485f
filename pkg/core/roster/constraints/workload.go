package constraints

import (
	"fmt"

	"github.com/jakechorley/nurse-rota/pkg/core/instance"
	"github.com/jakechorley/nurse-rota/pkg/core/roster"
)

// WorkloadConstraint penalises nurses whose total workload in a shift exceeds their capacity.
//
// Violations:
//   - One per overloaded nurse-shift pair, in order of the pair's first task
//   - Amount is the workload above capacity
//   - TaskIndex is -1 since the breach belongs to the pair, not to one task
type WorkloadConstraint struct {
	weight float64
}

// NewWorkloadConstraint creates a new WorkloadConstraint with the given weight
func NewWorkloadConstraint(weight float64) *WorkloadConstraint {
	return &WorkloadConstraint{weight: weight}
}

func (c *WorkloadConstraint) Name() string {
	return "WorkloadCapacity"
}

func (c *WorkloadConstraint) Weight() float64 {
	return c.weight
}

func (c *WorkloadConstraint) Validate(r *roster.Roster) []roster.Violation {
	type pair struct {
		nurse int
		shift int
	}

	// Sum loads keeping first-seen order so the report is deterministic
	var order []pair
	loads := make(map[pair]float64)
	rooms := make(map[pair]int)
	for task, nurse := range r.Genes {
		key := pair{nurse: nurse, shift: r.Instance.TaskShift(task)}
		if _, ok := loads[key]; !ok {
			order = append(order, key)
		}
		loads[key] += r.Instance.Workload(task)
		rooms[key]++
	}

	var violations []roster.Violation
	for _, key := range order {
		capacity := r.Instance.Capacity(key.nurse, key.shift)
		excess := loads[key] - capacity
		if excess <= 0 {
			continue
		}

		nurse := r.Instance.NurseID(key.nurse)
		shift := r.Instance.ShiftID(key.shift)
		violations = append(violations, roster.Violation{
			TaskIndex:      -1,
			Shift:          shift,
			Nurse:          nurse,
			ConstraintName: c.Name(),
			Amount:         excess,
			Description: fmt.Sprintf("Nurse %s carries %g over %d rooms in shift %s but max load is %g",
				nurse, loads[key], rooms[key], shift, capacity),
		})
	}

	return violations
}

// ForInstance returns the constraints of the objective weighted as in inst
func ForInstance(inst *instance.Instance) []roster.Constraint {
	w := inst.Weights()
	return []roster.Constraint{
		NewSkillLevelConstraint(w.Skill),
		NewWorkloadConstraint(w.Workload),
	}
}
