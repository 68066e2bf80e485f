package constraints

import (
	"fmt"

	"github.com/jakechorley/nurse-rota/pkg/core/roster"
)

// SkillLevelConstraint penalises nurses working rooms that need a higher skill level.
//
// Violations:
//   - One per task whose required skill exceeds the assigned nurse's skill
//   - Amount is the number of missing skill levels
type SkillLevelConstraint struct {
	weight float64
}

// NewSkillLevelConstraint creates a new SkillLevelConstraint with the given weight
func NewSkillLevelConstraint(weight float64) *SkillLevelConstraint {
	return &SkillLevelConstraint{weight: weight}
}

func (c *SkillLevelConstraint) Name() string {
	return "SkillLevel"
}

func (c *SkillLevelConstraint) Weight() float64 {
	return c.weight
}

func (c *SkillLevelConstraint) Validate(r *roster.Roster) []roster.Violation {
	var violations []roster.Violation

	for _, a := range r.Assignments() {
		deficit := a.RequiredSkill - a.NurseSkill
		if deficit <= 0 {
			continue
		}

		violations = append(violations, roster.Violation{
			TaskIndex:      a.TaskIndex,
			Room:           a.Room,
			Shift:          a.Shift,
			Nurse:          a.Nurse,
			ConstraintName: c.Name(),
			Amount:         float64(deficit),
			Description: fmt.Sprintf("Room %s needs skill %d but nurse %s has %d",
				a.Room, a.RequiredSkill, a.Nurse, a.NurseSkill),
		})
	}

	return violations
}
