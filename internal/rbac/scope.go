package rbac

import (
	"context"
	"fmt"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/db/models"
)

// Placement is where an employee sits in the organization, plus their effective level.
type Placement struct {
	EmployeeID     uint  `json:"employee_id"`
	OrganizationID *uint `json:"organization_id,omitempty"`
	DepartmentID   *uint `json:"department_id,omitempty"`
	ProgramID      *uint `json:"program_id,omitempty"`
	Level          int   `json:"level"`
}

// Actor is a resolved caller: their resolution and their own placement.
type Actor struct {
	*Resolution
	Employee  *models.Employee
	Placement Placement
}

// Actor resolves an employee into an Actor.
func (s *Service) Actor(ctx context.Context, employeeID uint) (*Actor, error) {
	emp, err := s.employee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	r, err := s.Resolve(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	return &Actor{
		Resolution: r,
		Employee:   emp,
		Placement:  placementOf(emp, r),
	}, nil
}

// Placement loads the placement of an employee. The level is the resolved highest
// level when the employee holds valid assignments, otherwise the level implied by
// the position's academic rank.
func (s *Service) Placement(ctx context.Context, employeeID uint) (Placement, error) {
	emp, err := s.employee(ctx, employeeID)
	if err != nil {
		return Placement{}, err
	}

	r, err := s.Resolve(ctx, employeeID)
	if err != nil {
		return Placement{}, err
	}

	return placementOf(emp, r), nil
}

func (s *Service) employee(ctx context.Context, employeeID uint) (*models.Employee, error) {
	var emp models.Employee

	err := s.db.WithContext(ctx).
		Preload("Department").
		Preload("Position").
		First(&emp, employeeID).Error
	if err != nil {
		return nil, apperr.FromDB(err, "Employee")
	}

	return &emp, nil
}

func placementOf(emp *models.Employee, r *Resolution) Placement {
	p := Placement{
		EmployeeID:     emp.ID,
		OrganizationID: emp.OrganizationID,
		DepartmentID:   emp.DepartmentID,
		ProgramID:      emp.ProgramID,
		Level:          emp.PositionLevel(),
	}

	if emp.Department != nil {
		orgID := emp.Department.OrganizationID
		p.OrganizationID = &orgID
	}

	if len(r.Assignments) > 0 {
		p.Level = r.HighestLevel
	}

	return p
}

// CanAct reports whether actor may act on the leave requests of the target employee.
func (s *Service) CanAct(ctx context.Context, actor *Actor, targetID uint) (bool, error) {
	target, err := s.Placement(ctx, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to place target: %w", err)
	}

	return Evaluate(actor, target), nil
}

// Evaluate decides whether actor may act on an employee placed at target.
//
// The actor needs a scope other than none and a highest level strictly below the
// target's level. Each valid assignment is then checked on its own: all passes,
// organization and department require the same unit and protect levels 0 and 1,
// program requires the same program and protects levels 0 to 2. An assignment's
// department or program scope narrows the unit, otherwise the actor's own unit is used.
func Evaluate(actor *Actor, target Placement) bool {
	if actor == nil || actor.Resolution == nil || actor.ApprovalScope == models.ScopeNone {
		return false
	}

	if actor.HighestLevel >= target.Level {
		return false
	}

	for i := range actor.Assignments {
		if assignmentCovers(&actor.Assignments[i], actor.Placement, target) {
			return true
		}
	}

	return false
}

func assignmentCovers(a *models.EmployeeRole, self, target Placement) bool {
	switch a.Role.ApprovalScope {
	case models.ScopeAll:
		return true
	case models.ScopeOrganization:
		org := self.OrganizationID
		if a.DepartmentScope != nil {
			org = &a.DepartmentScope.OrganizationID
		}

		return sameUnit(org, target.OrganizationID) && target.Level > models.LevelDean
	case models.ScopeDepartment:
		dept := self.DepartmentID
		if a.DepartmentScopeID != nil {
			dept = a.DepartmentScopeID
		}

		return sameUnit(dept, target.DepartmentID) && target.Level > models.LevelDean
	case models.ScopeProgram:
		program := self.ProgramID
		if a.ProgramScopeID != nil {
			program = a.ProgramScopeID
		}

		return sameUnit(program, target.ProgramID) && target.Level > models.LevelProgramChair
	default:
		return false
	}
}

func sameUnit(a, b *uint) bool {
	return a != nil && b != nil && *a == *b
}
