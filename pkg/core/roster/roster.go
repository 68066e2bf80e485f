package roster

import (
	"fmt"

	"github.com/jakechorley/nurse-rota/pkg/core/instance"
)

// Violation describes one soft constraint breach in a roster
type Violation struct {
	// TaskIndex is the gene position of the offending task, or -1 when the violation
	// belongs to a nurse-shift pair rather than a single task
	TaskIndex int

	Room  string
	Shift string
	Nurse string

	ConstraintName string

	// Amount is the unweighted size of the breach (skill levels missing, workload units over)
	Amount float64

	Description string
}

// Constraint is a soft constraint of the objective function.
// The weighted sum of Amount over every constraint's violations is the roster cost.
type Constraint interface {
	// Name returns a human-readable identifier for this constraint
	Name() string

	// Weight returns the weight this constraint's amounts are multiplied by
	Weight() float64

	// Validate returns every violation of this constraint in the roster (empty if none)
	Validate(r *Roster) []Violation
}

// Assignment is one task with the nurse the roster gives it
type Assignment struct {
	TaskIndex     int
	Room          string
	Shift         string
	Nurse         string
	NurseSkill    int
	RequiredSkill int
	Workload      float64
}

// Roster pairs an instance with a decoded individual
type Roster struct {
	Instance *instance.Instance
	Genes    []int
}

// New checks that genes is a valid individual for inst and wraps it in a Roster
func New(inst *instance.Instance, genes []int) (*Roster, error) {
	if inst == nil {
		return nil, fmt.Errorf("roster requires an instance")
	}
	if len(genes) != inst.NumTasks() {
		return nil, fmt.Errorf("roster has %d genes but instance has %d tasks", len(genes), inst.NumTasks())
	}
	for task, nurse := range genes {
		if !inst.IsEligible(task, nurse) {
			return nil, fmt.Errorf("task %d (%s) is assigned nurse index %d who is not available in that shift",
				task, inst.Task(task).Room, nurse)
		}
	}

	return &Roster{Instance: inst, Genes: genes}, nil
}

// Assignments lists the roster's tasks in gene order
func (r *Roster) Assignments() []Assignment {
	assignments := make([]Assignment, len(r.Genes))
	for i, nurse := range r.Genes {
		task := r.Instance.Task(i)
		assignments[i] = Assignment{
			TaskIndex:     i,
			Room:          task.Room,
			Shift:         task.Shift,
			Nurse:         r.Instance.NurseID(nurse),
			NurseSkill:    r.Instance.Skill(nurse),
			RequiredSkill: r.Instance.RequiredSkill(i),
			Workload:      r.Instance.Workload(i),
		}
	}
	return assignments
}

// Report is the result of checking a roster against a set of constraints
type Report struct {
	Assignments []Assignment
	Violations  []Violation

	// Totals holds the unweighted amount per constraint name
	Totals map[string]float64

	// Cost is the weighted total, equal to the genetic algorithm's cost for the same genes
	Cost float64
}

// Check validates the roster against every constraint
func Check(r *Roster, constraints ...Constraint) *Report {
	report := &Report{
		Assignments: r.Assignments(),
		Totals:      make(map[string]float64, len(constraints)),
	}

	for _, constraint := range constraints {
		total := 0.0
		for _, v := range constraint.Validate(r) {
			total += v.Amount
			report.Violations = append(report.Violations, v)
		}
		report.Totals[constraint.Name()] = total
		report.Cost += constraint.Weight() * total
	}

	return report
}

// Feasible reports whether the roster breaks no constraint
func (rep *Report) Feasible() bool {
	return len(rep.Violations) == 0
}
