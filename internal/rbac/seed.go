package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/univhr/hrcore/internal/db/controller/setting"
	"github.com/univhr/hrcore/internal/db/models"
)

// SeedSettingKey records the applied catalog version in the settings table.
const SeedSettingKey = "rbac_seed"

// SeedVersion is bumped whenever the default catalog changes.
const SeedVersion = 1

// SeedReport counts what Seed created.
type SeedReport struct {
	Permissions int `json:"permissions"`
	Roles       int `json:"roles"`
	Modules     int `json:"modules"`
	Grants      int `json:"grants"`
}

type seedState struct {
	Version int `json:"version"`
}

// Seed creates the default permissions, roles, permission modules and grants.
// Existing rows are left untouched, so Seed can run on every start.
func (s *Service) Seed(ctx context.Context) (*SeedReport, error) {
	report := &SeedReport{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		perms := make(map[string]uint, len(defaultPermissions))

		for _, p := range defaultPermissions {
			p.IsSystem = true
			p.IsActive = true

			created, err := firstOrCreate(tx, "code = ?", p.Code, &p)
			if err != nil {
				return fmt.Errorf("failed to seed permission %s: %w", p.Code, err)
			}

			if created {
				report.Permissions++
			}

			perms[p.Code] = p.ID
		}

		for _, r := range defaultRoles {
			role := r.role
			role.IsSystem = true
			role.IsActive = true
			role.CanBeAssigned = true

			created, err := firstOrCreate(tx, "code = ?", role.Code, &role)
			if err != nil {
				return fmt.Errorf("failed to seed role %s: %w", role.Code, err)
			}

			if created {
				report.Roles++
			}

			n, err := s.seedGrants(tx, role.ID, r.grants, perms)
			if err != nil {
				return err
			}

			report.Grants += n
		}

		for _, m := range defaultModules {
			module := m.module
			module.IsActive = true

			created, err := firstOrCreate(tx, "code = ?", module.Code, &module)
			if err != nil {
				return fmt.Errorf("failed to seed module %s: %w", module.Code, err)
			}

			if created {
				report.Modules++
			}

			var members []models.Permission
			if err = tx.Where("code IN ?", m.codes).Order("code").Find(&members).Error; err != nil {
				return fmt.Errorf("failed to load module %s permissions: %w", module.Code, err)
			}

			if err = tx.Model(&module).Association("Permissions").Replace(members); err != nil {
				return fmt.Errorf("failed to seed module %s permissions: %w", module.Code, err)
			}
		}

		return setting.SetJSON(tx, SeedSettingKey, seedState{Version: SeedVersion})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAll(ctx)

	log.Info().
		Int("permissions", report.Permissions).
		Int("roles", report.Roles).
		Int("modules", report.Modules).
		Int("grants", report.Grants).
		Msg("rbac catalog seeded")

	return report, nil
}

// SeededVersion returns the catalog version recorded by the last Seed, 0 if never seeded.
func (s *Service) SeededVersion(ctx context.Context) (int, error) {
	var st seedState

	err := setting.GetJSON(s.db.WithContext(ctx), SeedSettingKey, &st)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return 0, nil
	}

	return st.Version, err
}

func (s *Service) seedGrants(tx *gorm.DB, roleID uint, codes []string, perms map[string]uint) (int, error) {
	if len(codes) == 1 && codes[0] == allPermissions {
		codes = make([]string, 0, len(defaultPermissions))
		for _, p := range defaultPermissions {
			codes = append(codes, p.Code)
		}
	}

	created := 0

	for _, code := range codes {
		permID, ok := perms[code]
		if !ok {
			log.Warn().Str("permission", code).Msg("seed grant references unknown permission")
			continue
		}

		rp := models.RolePermission{
			RoleID:       roleID,
			PermissionID: permID,
			IsActive:     true,
			GrantedAt:    s.now(),
		}

		ok, err := firstOrCreate(tx, "role_id = ? AND permission_id = ?", []any{roleID, permID}, &rp)
		if err != nil {
			return 0, fmt.Errorf("failed to seed grant %s: %w", code, err)
		}

		if ok {
			created++
		}
	}

	return created, nil
}

// firstOrCreate loads the row matching where into dst, or creates dst as given.
// args is either a single value or a slice of values for where.
func firstOrCreate(tx *gorm.DB, where string, args any, dst any) (bool, error) {
	vals, ok := args.([]any)
	if !ok {
		vals = []any{args}
	}

	err := tx.Where(where, vals...).First(dst).Error
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err = tx.Omit(clause.Associations).Create(dst).Error; err != nil {
		return false, err
	}

	return true, nil
}
