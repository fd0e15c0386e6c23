package daemon

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/univhr/hrcore/internal/config"
	"github.com/univhr/hrcore/internal/db/models"
	"github.com/univhr/hrcore/internal/rbac"
)

const (
	adminFirstName = "HR"
	adminLastName  = "Administrator"
	adminRole      = "HR_ADMIN"
)

// Seed creates the default RBAC catalog and, on an empty employee table, the
// bootstrap HR administrator of cfg.Seed. It is safe to run on every start.
func Seed(ctx context.Context, cfg *config.Config, rbacService *rbac.Service) error {
	report, err := rbacService.Seed(ctx)
	if err != nil {
		return err
	}

	log.Info().Int("permissions", report.Permissions).Int("roles", report.Roles).
		Int("modules", report.Modules).Int("grants", report.Grants).Msg("rbac catalog seeded")

	return seedAdmin(ctx, cfg.Seed, rbacService)
}

func seedAdmin(ctx context.Context, s config.Seed, rbacService *rbac.Service) error {
	gdb := rbacService.DB().WithContext(ctx)

	var count int64
	if err := gdb.Model(&models.Employee{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count employees: %w", err)
	}

	if count > 0 || s.AdminEmployeeID == "" {
		return nil
	}

	var role models.Role
	if err := gdb.Where("code = ?", adminRole).First(&role).Error; err != nil {
		return fmt.Errorf("failed to load role %s: %w", adminRole, err)
	}

	admin := models.Employee{
		Code:      s.AdminEmployeeID,
		FirstName: adminFirstName,
		LastName:  adminLastName,
		Email:     s.AdminEmail,
		IsActive:  true,
	}

	if s.AdminPassword != "" {
		admin.Password = models.HashPassword(s.AdminPassword)
	}

	if err := gdb.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create bootstrap administrator: %w", err)
	}

	_, err := rbacService.Assign(ctx, rbac.Audit{Notes: "bootstrap administrator"}, rbac.AssignmentInput{
		EmployeeID: admin.ID,
		RoleID:     role.ID,
		IsPrimary:  true,
	})
	if err != nil {
		return err
	}

	log.Warn().Str("employee_id", admin.Code).Msg("bootstrap HR administrator created, change its password")

	return nil
}
