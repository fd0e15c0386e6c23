package rbac

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/db/models"
)

// AssignmentInput creates a role assignment.
type AssignmentInput struct {
	EmployeeID        uint       `json:"employee_id"         validate:"required"`
	RoleID            uint       `json:"role_id"             validate:"required"`
	DepartmentScopeID *uint      `json:"department_scope_id"`
	ProgramScopeID    *uint      `json:"program_scope_id"`
	IsPrimary         bool       `json:"is_primary"`
	IsActive          *bool      `json:"is_active"`
	ValidFrom         *time.Time `json:"valid_from"`
	ValidUntil        *time.Time `json:"valid_until"`
	Notes             string     `json:"notes"`
}

// AssignmentUpdate changes the mutable fields of an assignment. Nil fields are kept.
type AssignmentUpdate struct {
	IsActive   *bool      `json:"is_active"`
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
	Notes      *string    `json:"notes"`
}

// BulkAssignInput assigns one role to many employees.
type BulkAssignInput struct {
	RoleID            uint       `json:"role_id"             validate:"required"`
	EmployeeIDs       []uint     `json:"employee_ids"        validate:"required,min=1"`
	DepartmentScopeID *uint      `json:"department_scope_id"`
	ProgramScopeID    *uint      `json:"program_scope_id"`
	IsPrimary         bool       `json:"is_primary"`
	ValidFrom         *time.Time `json:"valid_from"`
	ValidUntil        *time.Time `json:"valid_until"`
	Notes             string     `json:"notes"`
}

// BulkError is the failure for one employee of a bulk assignment.
type BulkError struct {
	EmployeeID uint   `json:"employee_id"`
	Error      string `json:"error"`
}

// BulkResult reports the outcome of a bulk assignment.
type BulkResult struct {
	Created    int         `json:"created"`
	CreatedIDs []uint      `json:"created_ids"`
	Errors     []BulkError `json:"errors"`
}

// AssignmentFilter narrows ListAssignments. Zero values are ignored.
type AssignmentFilter struct {
	EmployeeID *uint
	RoleID     *uint
	ActiveOnly bool
}

func assignmentSummary(a *models.EmployeeRole, roleCode string) map[string]any {
	return map[string]any{"role": roleCode, "is_primary": a.IsPrimary}
}

func checkWindow(from, until *time.Time) error {
	if from != nil && until != nil && until.Before(*from) {
		return apperr.Validation("valid_until must not be before valid_from").
			WithField("valid_until", "gtefield=valid_from")
	}

	return nil
}

// scopeMatch restricts q to assignments with exactly the given scopes, NULL included.
func scopeMatch(q *gorm.DB, dept, program *uint) *gorm.DB {
	if dept == nil {
		q = q.Where("department_scope_id IS NULL")
	} else {
		q = q.Where("department_scope_id = ?", *dept)
	}

	if program == nil {
		q = q.Where("program_scope_id IS NULL")
	} else {
		q = q.Where("program_scope_id = ?", *program)
	}

	return q
}

func (s *Service) findAssignment(tx *gorm.DB, employeeID, roleID uint, dept, program *uint) (*models.EmployeeRole, error) {
	var a models.EmployeeRole

	err := scopeMatch(tx.Where("employee_id = ? AND role_id = ?", employeeID, roleID), dept, program).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil //nolint:nilnil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to look up assignment: %w", err)
	}

	return &a, nil
}

func unsetPrimary(tx *gorm.DB, employeeID, keepID uint) error {
	err := tx.Model(&models.EmployeeRole{}).
		Where("employee_id = ? AND is_primary = ? AND id <> ?", employeeID, true, keepID).
		Update("is_primary", false).Error
	if err != nil {
		return fmt.Errorf("failed to unset primary assignments: %w", err)
	}

	return nil
}

// Assign binds an employee to a role. A second assignment with the same
// employee, role and scopes fails with an integrity error.
func (s *Service) Assign(ctx context.Context, audit Audit, in AssignmentInput) (*models.EmployeeRole, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.FromValidator(err)
	}

	if err := checkWindow(in.ValidFrom, in.ValidUntil); err != nil {
		return nil, err
	}

	a := models.EmployeeRole{
		EmployeeID:        in.EmployeeID,
		RoleID:            in.RoleID,
		DepartmentScopeID: in.DepartmentScopeID,
		ProgramScopeID:    in.ProgramScopeID,
		IsPrimary:         in.IsPrimary,
		IsActive:          boolOr(in.IsActive, true),
		ValidFrom:         in.ValidFrom,
		ValidUntil:        in.ValidUntil,
		AssignedByID:      audit.PerformedBy,
		AssignedAt:        s.now(),
		Notes:             in.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Employee{}, in.EmployeeID).Error; err != nil {
			return apperr.FromDB(err, "Employee")
		}

		if err := tx.First(&a.Role, in.RoleID).Error; err != nil {
			return apperr.FromDB(err, "Role")
		}

		existing, err := s.findAssignment(tx, in.EmployeeID, in.RoleID, in.DepartmentScopeID, in.ProgramScopeID)
		if err != nil {
			return err
		}

		if existing != nil {
			return apperr.Integrity("Employee already has this role with the same scope")
		}

		if err = tx.Omit(clause.Associations).Create(&a).Error; err != nil {
			return apperr.FromDB(err, "Role assignment")
		}

		if a.IsPrimary {
			if err = unsetPrimary(tx, a.EmployeeID, a.ID); err != nil {
				return err
			}
		}

		return s.record(tx, audit, change{
			action: models.ActionAssign, model: models.ModelEmployeeRole, id: a.ID,
			next: assignmentSummary(&a, a.Role.Code), affected: &a.EmployeeID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, a.EmployeeID)

	return &a, nil
}

// UpdateAssignment changes the activity, validity window or notes of an assignment.
func (s *Service) UpdateAssignment(
	ctx context.Context, audit Audit, id uint, in AssignmentUpdate,
) (*models.EmployeeRole, error) {
	var a models.EmployeeRole

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Role").First(&a, id).Error; err != nil {
			return apperr.FromDB(err, "Role assignment")
		}

		prev := map[string]any{"is_active": a.IsActive, "valid_from": a.ValidFrom, "valid_until": a.ValidUntil}

		a.IsActive = boolOr(in.IsActive, a.IsActive)

		if in.ValidFrom != nil {
			a.ValidFrom = in.ValidFrom
		}

		if in.ValidUntil != nil {
			a.ValidUntil = in.ValidUntil
		}

		if in.Notes != nil {
			a.Notes = *in.Notes
		}

		if err := checkWindow(a.ValidFrom, a.ValidUntil); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(&a).Error; err != nil {
			return fmt.Errorf("failed to update assignment: %w", err)
		}

		return s.record(tx, audit, change{
			action: models.ActionUpdate, model: models.ModelEmployeeRole, id: a.ID, prev: prev,
			next:     map[string]any{"is_active": a.IsActive, "valid_from": a.ValidFrom, "valid_until": a.ValidUntil},
			affected: &a.EmployeeID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, a.EmployeeID)

	return &a, nil
}

// Revoke deletes an assignment.
func (s *Service) Revoke(ctx context.Context, audit Audit, id uint) error {
	var a models.EmployeeRole

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Role").First(&a, id).Error; err != nil {
			return apperr.FromDB(err, "Role assignment")
		}

		if err := s.record(tx, audit, change{
			action: models.ActionRevoke, model: models.ModelEmployeeRole, id: a.ID,
			prev: assignmentSummary(&a, a.Role.Code), affected: &a.EmployeeID,
		}); err != nil {
			return err
		}

		return tx.Delete(&models.EmployeeRole{}, a.ID).Error
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, a.EmployeeID)

	return nil
}

// SetPrimary marks an assignment as the employee's primary one and unsets every other.
func (s *Service) SetPrimary(ctx context.Context, audit Audit, id uint) (*models.EmployeeRole, error) {
	var a models.EmployeeRole

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Role").First(&a, id).Error; err != nil {
			return apperr.FromDB(err, "Role assignment")
		}

		if err := unsetPrimary(tx, a.EmployeeID, a.ID); err != nil {
			return err
		}

		a.IsPrimary = true
		if err := tx.Model(&models.EmployeeRole{}).Where(whereID, a.ID).Update("is_primary", true).Error; err != nil {
			return fmt.Errorf("failed to set primary assignment: %w", err)
		}

		return s.record(tx, audit, change{
			action: models.ActionUpdate, model: models.ModelEmployeeRole, id: a.ID,
			next: assignmentSummary(&a, a.Role.Code), affected: &a.EmployeeID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, a.EmployeeID)

	return &a, nil
}

// BulkAssign assigns a role to many employees. Existing assignments with the same
// scopes are left untouched. Unknown employees are reported per employee.
func (s *Service) BulkAssign(ctx context.Context, audit Audit, in BulkAssignInput) (*BulkResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.FromValidator(err)
	}

	if err := checkWindow(in.ValidFrom, in.ValidUntil); err != nil {
		return nil, err
	}

	res := &BulkResult{CreatedIDs: []uint{}, Errors: []BulkError{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.First(&role, in.RoleID).Error; err != nil {
			return apperr.FromDB(err, "Role")
		}

		for _, empID := range in.EmployeeIDs {
			var count int64
			if err := tx.Model(&models.Employee{}).Where(whereID, empID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to look up employee: %w", err)
			}

			if count == 0 {
				res.Errors = append(res.Errors, BulkError{EmployeeID: empID, Error: "Employee not found"})
				continue
			}

			existing, err := s.findAssignment(tx, empID, role.ID, in.DepartmentScopeID, in.ProgramScopeID)
			if err != nil {
				return err
			}

			if existing != nil {
				continue
			}

			a := models.EmployeeRole{
				EmployeeID:        empID,
				RoleID:            role.ID,
				DepartmentScopeID: in.DepartmentScopeID,
				ProgramScopeID:    in.ProgramScopeID,
				IsPrimary:         in.IsPrimary,
				IsActive:          true,
				ValidFrom:         in.ValidFrom,
				ValidUntil:        in.ValidUntil,
				AssignedByID:      audit.PerformedBy,
				AssignedAt:        s.now(),
				Notes:             in.Notes,
			}
			if err = tx.Omit(clause.Associations).Create(&a).Error; err != nil {
				return apperr.FromDB(err, "Role assignment")
			}

			if a.IsPrimary {
				if err = unsetPrimary(tx, empID, a.ID); err != nil {
					return err
				}
			}

			if err = s.record(tx, audit, change{
				action: models.ActionAssign, model: models.ModelEmployeeRole, id: a.ID,
				next: map[string]any{"role": role.Code}, affected: &a.EmployeeID,
			}); err != nil {
				return err
			}

			res.Created++
			res.CreatedIDs = append(res.CreatedIDs, empID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, empID := range res.CreatedIDs {
		s.invalidate(ctx, empID)
	}

	return res, nil
}

// ListAssignments returns assignments with their role and scopes, primary first.
func (s *Service) ListAssignments(ctx context.Context, f AssignmentFilter) ([]models.EmployeeRole, error) {
	q := s.db.WithContext(ctx).
		Preload("Role").
		Preload("DepartmentScope").
		Preload("ProgramScope").
		Order("employee_id").
		Order("is_primary DESC").
		Order("id")

	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}

	if f.RoleID != nil {
		q = q.Where("role_id = ?", *f.RoleID)
	}

	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var out []models.EmployeeRole
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	return out, nil
}

// AssignmentsByEmployee returns the active assignments of one employee.
func (s *Service) AssignmentsByEmployee(ctx context.Context, employeeID uint) ([]models.EmployeeRole, error) {
	return s.ListAssignments(ctx, AssignmentFilter{EmployeeID: &employeeID, ActiveOnly: true})
}

// RoleEmployees returns the active assignments of a role with their employees.
func (s *Service) RoleEmployees(ctx context.Context, roleID uint) ([]models.EmployeeRole, error) {
	if err := s.db.WithContext(ctx).First(&models.Role{}, roleID).Error; err != nil {
		return nil, apperr.FromDB(err, "Role")
	}

	var out []models.EmployeeRole

	err := s.db.WithContext(ctx).
		Preload("Employee").
		Preload("Role").
		Where("role_id = ? AND is_active = ?", roleID, true).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list role employees: %w", err)
	}

	return out, nil
}
