package ga

import (
	"github.com/jakechorley/nurse-rota/pkg/core/instance"
)

// Penalty is the decomposed cost of an individual
type Penalty struct {
	// SkillDeficit is the sum of positive (required - nurse skill) over all tasks
	SkillDeficit float64

	// WorkloadExcess is the sum of positive (load - capacity) over used nurse-shift pairs
	WorkloadExcess float64

	// Cost is the weighted total that the algorithm minimises
	Cost float64
}

// Evaluator computes the cost of individuals against an instance.
//
// It keeps a flat nurse x shift load matrix and the list of cells touched by the
// last call, so repeated evaluations do not allocate. An Evaluator is not safe for
// concurrent use; give each goroutine its own.
type Evaluator struct {
	inst    *instance.Instance
	load    []float64
	touched []int
}

// NewEvaluator creates an evaluator for the instance
func NewEvaluator(inst *instance.Instance) *Evaluator {
	return &Evaluator{
		inst:    inst,
		load:    make([]float64, inst.NumNurses()*inst.NumShifts()),
		touched: make([]int, 0, inst.NumTasks()),
	}
}

// Evaluate returns the weighted penalty cost of genes. Lower is better, 0 means no
// violation of either kind.
func (e *Evaluator) Evaluate(genes []int) float64 {
	return e.Breakdown(genes).Cost
}

// Breakdown returns the cost of genes split into its two penalty components
func (e *Evaluator) Breakdown(genes []int) Penalty {
	inst := e.inst
	shifts := inst.NumShifts()

	skillDeficit := 0
	for task, nurse := range genes {
		if deficit := inst.RequiredSkill(task) - inst.Skill(nurse); deficit > 0 {
			skillDeficit += deficit
		}

		cell := nurse*shifts + inst.TaskShift(task)
		if e.load[cell] == 0 {
			e.touched = append(e.touched, cell)
		}
		e.load[cell] += inst.Workload(task)
	}

	workloadExcess := 0.0
	for _, cell := range e.touched {
		load := e.load[cell]
		// A zero-workload task can leave a cell touched twice; only count it once
		if load == 0 {
			continue
		}
		if excess := load - inst.Capacity(cell/shifts, cell%shifts); excess > 0 {
			workloadExcess += excess
		}
		e.load[cell] = 0
	}
	e.touched = e.touched[:0]

	w := inst.Weights()
	return Penalty{
		SkillDeficit:   float64(skillDeficit),
		WorkloadExcess: workloadExcess,
		Cost:           w.Skill*float64(skillDeficit) + w.Workload*workloadExcess,
	}
}
