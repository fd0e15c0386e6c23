package rbac

import (
	"context"
	"fmt"

	"github.com/univhr/hrcore/internal/db/models"
)

// PermissionCheck is the answer of CheckPermission.
type PermissionCheck struct {
	HasPermission bool   `json:"has_permission"`
	GrantedByRole string `json:"granted_by_role,omitempty"`
}

// LevelCount is the number of active roles at one level.
type LevelCount struct {
	Level int   `json:"level"`
	Count int64 `json:"count"`
}

// Stats summarizes the RBAC catalog.
type Stats struct {
	TotalPermissions int64        `json:"total_permissions"`
	TotalRoles       int64        `json:"total_roles"`
	TotalAssignments int64        `json:"total_assignments"`
	SystemRoles      int64        `json:"system_roles"`
	RecentChanges    int64        `json:"recent_changes"`
	RolesByLevel     []LevelCount `json:"roles_by_level"`
}

// CheckPermission reports whether an employee holds a permission and the code of
// the first valid role, in resolution order, that grants it.
func (s *Service) CheckPermission(ctx context.Context, employeeID uint, code string) (*PermissionCheck, error) {
	r, err := s.Resolve(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	if !r.Has(code) {
		return &PermissionCheck{}, nil
	}

	for _, a := range r.Assignments {
		var count int64

		err = s.db.WithContext(ctx).Model(&models.RolePermission{}).
			Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
			Where("role_permissions.role_id = ? AND role_permissions.is_active = ? AND permissions.is_active = ? AND permissions.code = ?",
				a.RoleID, true, true, code).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check role permission: %w", err)
		}

		if count > 0 {
			return &PermissionCheck{HasPermission: true, GrantedByRole: a.Role.Code}, nil
		}
	}

	return &PermissionCheck{HasPermission: true}, nil
}

// HasPermission checks if an employee has a specific permission.
func (s *Service) HasPermission(ctx context.Context, employeeID uint, code string) (bool, error) {
	r, err := s.Resolve(ctx, employeeID)
	if err != nil {
		return false, err
	}

	return r.Has(code), nil
}

// HasAnyPermission checks if an employee has at least one of the given permissions.
func (s *Service) HasAnyPermission(ctx context.Context, employeeID uint, codes ...string) (bool, error) {
	if len(codes) == 0 {
		return false, nil
	}

	r, err := s.Resolve(ctx, employeeID)
	if err != nil {
		return false, err
	}

	return r.HasAny(codes...), nil
}

// HasAllPermissions checks if an employee has all the given permissions.
func (s *Service) HasAllPermissions(ctx context.Context, employeeID uint, codes ...string) (bool, error) {
	r, err := s.Resolve(ctx, employeeID)
	if err != nil {
		return false, err
	}

	return r.HasAll(codes...), nil
}

// Stats counts the active catalog and the change log.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	out := &Stats{RolesByLevel: []LevelCount{}}

	counts := []struct {
		model any
		where string
		dst   *int64
	}{
		{&models.Permission{}, "is_active = ?", &out.TotalPermissions},
		{&models.Role{}, "is_active = ?", &out.TotalRoles},
		{&models.EmployeeRole{}, "is_active = ?", &out.TotalAssignments},
		{&models.Role{}, "is_system = ?", &out.SystemRoles},
	}

	for _, c := range counts {
		if err := db.Model(c.model).Where(c.where, true).Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("failed to count: %w", err)
		}
	}

	if err := db.Model(&models.RBACChangeLog{}).Count(&out.RecentChanges).Error; err != nil {
		return nil, fmt.Errorf("failed to count change log: %w", err)
	}

	err := db.Model(&models.Role{}).
		Select("level, COUNT(id) AS count").
		Where("is_active = ?", true).
		Group("level").
		Order("level").
		Scan(&out.RolesByLevel).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group roles by level: %w", err)
	}

	return out, nil
}
