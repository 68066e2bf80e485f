package instance

import "fmt"

// Task identifies one occupied (room, shift) pair that needs a nurse
type Task struct {
	Room  string
	Shift string
}

// NurseShift is the composite key of a nurse working a given shift
type NurseShift struct {
	Nurse string
	Shift string
}

// Weights holds the penalty weights of the objective function
type Weights struct {
	Skill    float64
	Workload float64
}

// Input contains the raw lookup tables produced by the instance file parsers
type Input struct {
	// Skill is the skill level of each nurse
	Skill map[string]int

	// Capacity is the maximum workload of a nurse in a given shift
	Capacity map[NurseShift]float64

	// Availability lists the nurses that work each shift, in preference order
	Availability map[string][]string

	// Tasks in the order their genes appear in an individual
	Tasks []Task

	// RequiredSkill is the minimum skill level a task needs
	RequiredSkill map[Task]int

	// Workload is the amount of work a task adds to its nurse's shift
	Workload map[Task]float64

	Weights Weights
}

// Instance is the read-only model the genetic algorithm works against.
//
// Nurses and shifts are interned to dense indices when the instance is built so the
// evaluator can use flat slices instead of composite-key maps. An Instance is never
// mutated after Build and can be shared between goroutines.
type Instance struct {
	tasks    []Task
	nurseIDs []string
	shiftIDs []string

	nurseSkill []int
	// capacity is a flat nurses x shifts matrix
	capacity []float64

	taskShift    []int
	taskRequired []int
	taskWorkload []float64

	// eligible holds, per task, the nurse indices available in the task's shift.
	// Tasks in the same shift share the same backing slice.
	eligible [][]int

	weights Weights
}

// Build validates the raw lookup tables and creates an Instance.
//
// Returns a *ConfigurationError when:
//   - either weight is negative
//   - there are no tasks
//   - a task has no required skill or workload entry
//   - a task's shift has no available nurses
//   - an available nurse has no skill level or no capacity for that shift
func Build(in Input) (*Instance, error) {
	if in.Weights.Skill < 0 {
		return nil, configErrorf("weights.skill", "must be non-negative, got %v", in.Weights.Skill)
	}
	if in.Weights.Workload < 0 {
		return nil, configErrorf("weights.workload", "must be non-negative, got %v", in.Weights.Workload)
	}
	if len(in.Tasks) == 0 {
		return nil, configErrorf("tasks", "at least one task is required")
	}

	inst := &Instance{
		tasks:        make([]Task, len(in.Tasks)),
		taskShift:    make([]int, len(in.Tasks)),
		taskRequired: make([]int, len(in.Tasks)),
		taskWorkload: make([]float64, len(in.Tasks)),
		eligible:     make([][]int, len(in.Tasks)),
		weights:      in.Weights,
	}
	copy(inst.tasks, in.Tasks)

	shiftIndex := make(map[string]int)
	nurseIndex := make(map[string]int)

	// Intern shifts in task order
	for _, task := range in.Tasks {
		if _, ok := shiftIndex[task.Shift]; !ok {
			shiftIndex[task.Shift] = len(inst.shiftIDs)
			inst.shiftIDs = append(inst.shiftIDs, task.Shift)
		}
	}

	// Intern the nurses that can actually be drawn, shift by shift
	eligibleByShift := make([][]int, len(inst.shiftIDs))
	for s, shift := range inst.shiftIDs {
		nurses := in.Availability[shift]
		seen := make(map[string]bool, len(nurses))
		list := make([]int, 0, len(nurses))

		for _, nurse := range nurses {
			if seen[nurse] {
				continue
			}
			seen[nurse] = true

			if _, ok := in.Skill[nurse]; !ok {
				return nil, configErrorf("skill", "nurse %q is available in shift %q but has no skill level", nurse, shift)
			}
			if _, ok := in.Capacity[NurseShift{Nurse: nurse, Shift: shift}]; !ok {
				return nil, configErrorf("capacity", "nurse %q is available in shift %q but has no capacity", nurse, shift)
			}

			idx, ok := nurseIndex[nurse]
			if !ok {
				idx = len(inst.nurseIDs)
				nurseIndex[nurse] = idx
				inst.nurseIDs = append(inst.nurseIDs, nurse)
			}
			list = append(list, idx)
		}

		if len(list) == 0 {
			return nil, configErrorf("availability", "shift %q has no available nurses", shift)
		}
		eligibleByShift[s] = list
	}

	inst.nurseSkill = make([]int, len(inst.nurseIDs))
	for i, nurse := range inst.nurseIDs {
		inst.nurseSkill[i] = in.Skill[nurse]
	}

	inst.capacity = make([]float64, len(inst.nurseIDs)*len(inst.shiftIDs))
	for n, nurse := range inst.nurseIDs {
		for s, shift := range inst.shiftIDs {
			// Pairs a nurse never works are never used by a valid gene, zero is fine
			inst.capacity[n*len(inst.shiftIDs)+s] = in.Capacity[NurseShift{Nurse: nurse, Shift: shift}]
		}
	}

	for i, task := range in.Tasks {
		required, ok := in.RequiredSkill[task]
		if !ok {
			return nil, configErrorf("requiredSkill", "task (%s, %s) has no required skill", task.Room, task.Shift)
		}
		workload, ok := in.Workload[task]
		if !ok {
			return nil, configErrorf("workload", "task (%s, %s) has no workload", task.Room, task.Shift)
		}

		s := shiftIndex[task.Shift]
		inst.taskShift[i] = s
		inst.taskRequired[i] = required
		inst.taskWorkload[i] = workload
		inst.eligible[i] = eligibleByShift[s]
	}

	return inst, nil
}

// NumTasks returns the genome length
func (inst *Instance) NumTasks() int {
	return len(inst.tasks)
}

// NumNurses returns the number of nurses available in at least one task shift
func (inst *Instance) NumNurses() int {
	return len(inst.nurseIDs)
}

// NumShifts returns the number of distinct shifts referenced by tasks
func (inst *Instance) NumShifts() int {
	return len(inst.shiftIDs)
}

// Task returns the task at gene position i
func (inst *Instance) Task(i int) Task {
	return inst.tasks[i]
}

// NurseID returns the external identifier of a nurse index
func (inst *Instance) NurseID(nurse int) string {
	return inst.nurseIDs[nurse]
}

// ShiftID returns the external identifier of a shift index
func (inst *Instance) ShiftID(shift int) string {
	return inst.shiftIDs[shift]
}

// NurseIndex looks up the dense index of a nurse
func (inst *Instance) NurseIndex(id string) (int, bool) {
	for i, nurse := range inst.nurseIDs {
		if nurse == id {
			return i, true
		}
	}
	return 0, false
}

// Eligible returns the nurse indices that may be assigned to task i.
// The returned slice must not be modified.
func (inst *Instance) Eligible(task int) []int {
	return inst.eligible[task]
}

// TaskShift returns the shift index of task i
func (inst *Instance) TaskShift(task int) int {
	return inst.taskShift[task]
}

// RequiredSkill returns the minimum skill level of task i
func (inst *Instance) RequiredSkill(task int) int {
	return inst.taskRequired[task]
}

// Workload returns the workload of task i
func (inst *Instance) Workload(task int) float64 {
	return inst.taskWorkload[task]
}

// Skill returns the skill level of a nurse index
func (inst *Instance) Skill(nurse int) int {
	return inst.nurseSkill[nurse]
}

// Capacity returns the maximum workload of a nurse in a shift
func (inst *Instance) Capacity(nurse, shift int) float64 {
	return inst.capacity[nurse*len(inst.shiftIDs)+shift]
}

// Weights returns the objective weights
func (inst *Instance) Weights() Weights {
	return inst.weights
}

// IsEligible reports whether a nurse may be assigned to task i
func (inst *Instance) IsEligible(task, nurse int) bool {
	for _, n := range inst.eligible[task] {
		if n == nurse {
			return true
		}
	}
	return false
}

// String summarises the instance dimensions
func (inst *Instance) String() string {
	return fmt.Sprintf("instance{tasks: %d, nurses: %d, shifts: %d}", len(inst.tasks), len(inst.nurseIDs), len(inst.shiftIDs))
}
