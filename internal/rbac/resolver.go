package rbac

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/db/models"
)

// Resolution is the effective authorization state of one employee at one point in time.
type Resolution struct {
	EmployeeID uint `json:"employee_id"`
	// Permissions is the sorted union of active permission codes of all valid assignments.
	Permissions   []string              `json:"permissions"`
	HighestLevel  int                   `json:"highest_level"`
	ApprovalScope models.ApprovalScope  `json:"approval_scope"`
	PrimaryRole   *models.Role          `json:"primary_role"`
	Assignments   []models.EmployeeRole `json:"assignments"`
	IsHR          bool                  `json:"is_hr"`
	CanApprove    bool                  `json:"can_approve"`
	// Expires is the next instant an assignment window opens or closes, nil when none does.
	Expires *time.Time `json:"-"`
}

// Current reports whether the resolution still holds at now.
func (r *Resolution) Current(now time.Time) bool {
	return r.Expires == nil || now.Before(*r.Expires)
}

// Has reports whether code is an effective permission.
func (r *Resolution) Has(code string) bool {
	i := sort.SearchStrings(r.Permissions, code)
	return i < len(r.Permissions) && r.Permissions[i] == code
}

// HasAny reports whether at least one of codes is effective.
func (r *Resolution) HasAny(codes ...string) bool {
	for _, c := range codes {
		if r.Has(c) {
			return true
		}
	}

	return false
}

// HasAll reports whether every one of codes is effective.
func (r *Resolution) HasAll(codes ...string) bool {
	for _, c := range codes {
		if !r.Has(c) {
			return false
		}
	}

	return true
}

// Resolve computes the effective permissions, highest level and broadest approval
// scope of an employee from all currently valid role assignments.
// The employee's active flag is not considered.
func (s *Service) Resolve(ctx context.Context, employeeID uint) (*Resolution, error) {
	if s.cache != nil {
		if r, ok := s.cache.Get(ctx, employeeID); ok && r.Current(s.now()) {
			return r, nil
		}
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Employee{}).Where("id = ?", employeeID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to look up employee: %w", err)
	}

	if count == 0 {
		return nil, apperr.NotFound("Employee not found")
	}

	r, err := s.resolve(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, r)
	}

	return r, nil
}

func (s *Service) resolve(ctx context.Context, employeeID uint) (*Resolution, error) {
	valid, expires, err := s.validAssignments(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	r := &Resolution{
		EmployeeID:    employeeID,
		Permissions:   []string{},
		HighestLevel:  models.LevelGuest,
		ApprovalScope: models.ScopeNone,
		Assignments:   valid,
		Expires:       expires,
	}

	if len(valid) == 0 {
		return r, nil
	}

	roleIDs := make([]uint, 0, len(valid))

	for i := range valid {
		role := valid[i].Role
		roleIDs = append(roleIDs, role.ID)

		if role.Level < r.HighestLevel {
			r.HighestLevel = role.Level
		}

		if role.ApprovalScope.Rank() > r.ApprovalScope.Rank() {
			r.ApprovalScope = role.ApprovalScope
		}

		if r.PrimaryRole == nil && valid[i].IsPrimary {
			r.PrimaryRole = &valid[i].Role
		}
	}

	// valid is ordered primary first, then by level, so the first entry is the deterministic fallback
	if r.PrimaryRole == nil {
		r.PrimaryRole = &valid[0].Role
	}

	codes, err := s.activeCodes(ctx, roleIDs)
	if err != nil {
		return nil, err
	}

	r.Permissions = codes
	r.IsHR = r.Has(PermHRFullAccess) || r.HighestLevel == models.LevelSuperAdmin

	for _, code := range codes {
		for _, prefix := range approvePrefixes {
			if strings.HasPrefix(code, prefix) {
				r.CanApprove = true
			}
		}
	}

	return r, nil
}

// validAssignments loads the active assignments of active roles and keeps those inside their validity window.
// expires is the nearest future window boundary of any of them.
func (s *Service) validAssignments(ctx context.Context, employeeID uint) ([]models.EmployeeRole, *time.Time, error) {
	var all []models.EmployeeRole

	err := s.db.WithContext(ctx).
		Joins("JOIN roles ON roles.id = employee_roles.role_id").
		Preload("Role").
		Preload("DepartmentScope").
		Preload("ProgramScope").
		Where("employee_roles.employee_id = ? AND employee_roles.is_active = ? AND roles.is_active = ?",
			employeeID, true, true).
		Order("employee_roles.is_primary DESC").
		Order("roles.level").
		Order("employee_roles.id").
		Find(&all).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load role assignments: %w", err)
	}

	now := s.now()
	valid := make([]models.EmployeeRole, 0, len(all))

	var expires *time.Time

	next := func(t time.Time) {
		if t.After(now) && (expires == nil || t.Before(*expires)) {
			expires = &t
		}
	}

	for i := range all {
		if all[i].IsValid(now) {
			valid = append(valid, all[i])
		}

		if all[i].ValidFrom != nil {
			next(*all[i].ValidFrom)
		}

		// valid through ValidUntil itself
		if all[i].ValidUntil != nil {
			next(all[i].ValidUntil.Add(time.Nanosecond))
		}
	}

	return valid, expires, nil
}

// activeCodes returns the sorted codes of active permissions actively granted to any of roleIDs.
func (s *Service) activeCodes(ctx context.Context, roleIDs []uint) ([]string, error) {
	var codes []string

	err := s.db.WithContext(ctx).
		Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id IN ? AND role_permissions.is_active = ? AND permissions.is_active = ?",
			roleIDs, true, true).
		Distinct().
		Pluck("permissions.code", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}

	sort.Strings(codes)

	if codes == nil {
		codes = []string{}
	}

	return codes, nil
}

// ResolveByEmail resolves the employee with the given email address.
func (s *Service) ResolveByEmail(ctx context.Context, email string) (*models.Employee, *Resolution, error) {
	var emp models.Employee
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&emp).Error; err != nil {
		return nil, nil, apperr.FromDB(err, "Employee")
	}

	r, err := s.Resolve(ctx, emp.ID)
	if err != nil {
		return nil, nil, err
	}

	return &emp, r, nil
}
