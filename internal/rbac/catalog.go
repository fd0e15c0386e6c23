package rbac

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/db/models"
)

const whereID = "id = ?"

// PermissionInput creates or updates a permission.
type PermissionInput struct {
	Code        string                    `json:"code"        validate:"required,max=100,permcode"`
	Name        string                    `json:"name"        validate:"required,max=200"`
	Description string                    `json:"description"`
	Category    models.PermissionCategory `json:"category"    validate:"required,oneof=leave employee reports settings organization audit"` //nolint:lll
	IsSystem    bool                      `json:"is_system"`
	IsActive    *bool                     `json:"is_active"`
}

// RoleInput creates or updates a role.
type RoleInput struct {
	Code          string               `json:"code"            validate:"required,max=50,rolecode"`
	Name          string               `json:"name"            validate:"required,max=100"`
	Description   string               `json:"description"`
	Level         int                  `json:"level"           validate:"min=-1,max=99"`
	ApprovalScope models.ApprovalScope `json:"approval_scope"  validate:"required,oneof=none program department organization all"` //nolint:lll
	IsSystem      bool                 `json:"is_system"`
	IsActive      *bool                `json:"is_active"`
	CanBeAssigned *bool                `json:"can_be_assigned"`
}

// CategoryGroup is the permissions of one category.
type CategoryGroup struct {
	Category    models.PermissionCategory `json:"category"`
	Display     string                    `json:"display"`
	Permissions []models.Permission       `json:"permissions"`
}

// RoleDetail is a role with its actively granted permissions.
type RoleDetail struct {
	models.Role
	Permissions   []models.RolePermission `json:"permissions"`
	EmployeeCount int64                   `json:"employee_count"`
}

func alreadyExists(what, col string, err error) error {
	if err != nil {
		return err
	}

	return apperr.Integrity("%s with this %s already exists", what, col).WithField(col, "unique")
}

func permissionSummary(p *models.Permission) map[string]any {
	return map[string]any{"code": p.Code, "name": p.Name}
}

func roleSummary(r *models.Role) map[string]any {
	return map[string]any{"code": r.Code, "name": r.Name, "level": r.Level}
}

// ListPermissions returns permissions ordered by category and name.
func (s *Service) ListPermissions(ctx context.Context, activeOnly bool) ([]models.Permission, error) {
	q := s.db.WithContext(ctx).Order("category").Order("name")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var out []models.Permission
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	return out, nil
}

// PermissionsByCategory groups active permissions by category in display order.
// Empty categories are omitted.
func (s *Service) PermissionsByCategory(ctx context.Context) ([]CategoryGroup, error) {
	perms, err := s.ListPermissions(ctx, true)
	if err != nil {
		return nil, err
	}

	byCat := make(map[models.PermissionCategory][]models.Permission)
	for _, p := range perms {
		byCat[p.Category] = append(byCat[p.Category], p)
	}

	out := make([]CategoryGroup, 0, len(byCat))

	for _, c := range models.PermissionCategories {
		if len(byCat[c]) == 0 {
			continue
		}

		out = append(out, CategoryGroup{Category: c, Display: c.Display(), Permissions: byCat[c]})
	}

	return out, nil
}

// GetPermission returns one permission.
func (s *Service) GetPermission(ctx context.Context, id uint) (*models.Permission, error) {
	var p models.Permission
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, apperr.FromDB(err, "Permission")
	}

	return &p, nil
}

// CreatePermission adds a permission to the catalog.
func (s *Service) CreatePermission(ctx context.Context, audit Audit, in PermissionInput) (*models.Permission, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.FromValidator(err)
	}

	p := models.Permission{
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		IsSystem:    in.IsSystem,
		IsActive:    boolOr(in.IsActive, true),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if col, err := taken(tx, &models.Permission{}, 0, map[string]string{"code": p.Code}); err != nil || col != "" {
			return alreadyExists("Permission", col, err)
		}

		if err := tx.Create(&p).Error; err != nil {
			return apperr.FromDB(err, "Permission")
		}

		return s.record(tx, audit, change{
			action: models.ActionCreate, model: models.ModelPermission, id: p.ID, next: permissionSummary(&p),
		})
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// UpdatePermission replaces the mutable fields of a permission.
func (s *Service) UpdatePermission(
	ctx context.Context, audit Audit, id uint, in PermissionInput,
) (*models.Permission, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.FromValidator(err)
	}

	var p models.Permission

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return apperr.FromDB(err, "Permission")
		}

		if col, err := taken(tx, &models.Permission{}, p.ID, map[string]string{"code": in.Code}); err != nil || col != "" {
			return alreadyExists("Permission", col, err)
		}

		prev := permissionSummary(&p)

		p.Code = in.Code
		p.Name = in.Name
		p.Description = in.Description
		p.Category = in.Category
		p.IsActive = boolOr(in.IsActive, p.IsActive)

		if err := tx.Save(&p).Error; err != nil {
			return apperr.FromDB(err, "Permission")
		}

		return s.record(tx, audit, change{
			action: models.ActionUpdate, model: models.ModelPermission, id: p.ID,
			prev: prev, next: permissionSummary(&p),
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAll(ctx)

	return &p, nil
}

// DeletePermission removes a non system permission and its grants.
func (s *Service) DeletePermission(ctx context.Context, audit Audit, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Permission
		if err := tx.First(&p, id).Error; err != nil {
			return apperr.FromDB(err, "Permission")
		}

		if p.IsSystem {
			return apperr.Forbidden("System permissions cannot be deleted")
		}

		if err := s.record(tx, audit, change{
			action: models.ActionDelete, model: models.ModelPermission, id: p.ID, prev: permissionSummary(&p),
		}); err != nil {
			return err
		}

		if err := tx.Where("permission_id = ?", p.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to delete grants: %w", err)
		}

		if err := tx.Exec("DELETE FROM permission_module_permissions WHERE permission_id = ?", p.ID).Error; err != nil {
			return fmt.Errorf("failed to detach modules: %w", err)
		}

		return tx.Delete(&p).Error
	})
	if err != nil {
		return err
	}

	s.invalidateAll(ctx)

	return nil
}

// ListRoles returns roles ordered by level and name.
func (s *Service) ListRoles(ctx context.Context, activeOnly bool) ([]models.Role, error) {
	q := s.db.WithContext(ctx).Order("level").Order("name")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var out []models.Role
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return out, nil
}

// AssignableRoles returns active roles that may be assigned, ordered by level.
func (s *Service) AssignableRoles(ctx context.Context) ([]models.Role, error) {
	var out []models.Role

	err := s.db.WithContext(ctx).
		Where("is_active = ? AND can_be_assigned = ?", true, true).
		Order("level").Order("name").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignable roles: %w", err)
	}

	return out, nil
}

// GetRole returns a role with its active grants and active assignment count.
func (s *Service) GetRole(ctx context.Context, id uint) (*RoleDetail, error) {
	var d RoleDetail
	if err := s.db.WithContext(ctx).First(&d.Role, id).Error; err != nil {
		return nil, apperr.FromDB(err, "Role")
	}

	err := s.db.WithContext(ctx).
		Preload("Permission").
		Where("role_id = ? AND is_active = ?", id, true).
		Order("id").
		Find(&d.Permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&models.EmployeeRole{}).
		Where("role_id = ? AND is_active = ?", id, true).
		Count(&d.EmployeeCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count role assignments: %w", err)
	}

	return &d, nil
}

// CreateRole adds a role to the catalog.
func (s *Service) CreateRole(ctx context.Context, audit Audit, in RoleInput) (*models.Role, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.FromValidator(err)
	}

	r := models.Role{
		Code:          in.Code,
		Name:          in.Name,
		Description:   in.Description,
		Level:         in.Level,
		ApprovalScope: in.ApprovalScope,
		IsSystem:      in.IsSystem,
		IsActive:      boolOr(in.IsActive, true),
		CanBeAssigned: boolOr(in.CanBeAssigned, true),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if col, err := taken(tx, &models.Role{}, 0, map[string]string{"code": r.Code, "name": r.Name}); err != nil || col != "" {
			return alreadyExists("Role", col, err)
		}

		if err := tx.Create(&r).Error; err != nil {
			return apperr.FromDB(err, "Role")
		}

		return s.record(tx, audit, change{
			action: models.ActionCreate, model: models.ModelRole, id: r.ID, next: roleSummary(&r),
		})
	})
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// UpdateRole replaces the mutable fields of a role.
func (s *Service) UpdateRole(ctx context.Context, audit Audit, id uint, in RoleInput) (*models.Role, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.FromValidator(err)
	}

	var r models.Role

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&r, id).Error; err != nil {
			return apperr.FromDB(err, "Role")
		}

		if col, err := taken(tx, &models.Role{}, r.ID, map[string]string{"code": in.Code, "name": in.Name}); err != nil || col != "" {
			return alreadyExists("Role", col, err)
		}

		prev := roleSummary(&r)

		r.Code = in.Code
		r.Name = in.Name
		r.Description = in.Description
		r.Level = in.Level
		r.ApprovalScope = in.ApprovalScope
		r.IsActive = boolOr(in.IsActive, r.IsActive)
		r.CanBeAssigned = boolOr(in.CanBeAssigned, r.CanBeAssigned)

		if err := tx.Save(&r).Error; err != nil {
			return apperr.FromDB(err, "Role")
		}

		return s.record(tx, audit, change{
			action: models.ActionUpdate, model: models.ModelRole, id: r.ID, prev: prev, next: roleSummary(&r),
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAll(ctx)

	return &r, nil
}

// DeleteRole removes a non system role without active assignments.
func (s *Service) DeleteRole(ctx context.Context, audit Audit, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Role
		if err := tx.First(&r, id).Error; err != nil {
			return apperr.FromDB(err, "Role")
		}

		if r.IsSystem {
			return apperr.Forbidden("System roles cannot be deleted")
		}

		var active int64
		if err := tx.Model(&models.EmployeeRole{}).
			Where("role_id = ? AND is_active = ?", r.ID, true).
			Count(&active).Error; err != nil {
			return fmt.Errorf("failed to count role assignments: %w", err)
		}

		if active > 0 {
			return apperr.Conflict("Cannot delete role with active employee assignments")
		}

		if err := s.record(tx, audit, change{
			action: models.ActionDelete, model: models.ModelRole, id: r.ID,
			prev: map[string]any{"code": r.Code, "name": r.Name},
		}); err != nil {
			return err
		}

		for _, m := range []any{&models.RolePermission{}, &models.EmployeeRole{}} {
			if err := tx.Where("role_id = ?", r.ID).Delete(m).Error; err != nil {
				return fmt.Errorf("failed to delete role dependents: %w", err)
			}
		}

		return tx.Delete(&r).Error
	})
	if err != nil {
		return err
	}

	s.invalidateAll(ctx)

	return nil
}

// AddPermission grants a permission to a role. An existing inactive grant is
// reactivated. created is false when the grant already existed.
func (s *Service) AddPermission(
	ctx context.Context, audit Audit, roleID, permissionID uint, conditions map[string]any,
) (rp *models.RolePermission, created bool, err error) {
	rp = &models.RolePermission{}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.First(&role, roleID).Error; err != nil {
			return apperr.FromDB(err, "Role")
		}

		var perm models.Permission
		if err := tx.First(&perm, permissionID).Error; err != nil {
			return apperr.FromDB(err, "Permission")
		}

		err := tx.Where("role_id = ? AND permission_id = ?", roleID, permissionID).First(rp).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			*rp = models.RolePermission{
				RoleID:       roleID,
				PermissionID: permissionID,
				IsActive:     true,
				Conditions:   conditions,
				GrantedByID:  audit.PerformedBy,
				GrantedAt:    s.now(),
			}
			if err = tx.Omit(clause.Associations).Create(rp).Error; err != nil {
				return apperr.FromDB(err, "Role permission")
			}

			created = true
		case err != nil:
			return fmt.Errorf("failed to look up grant: %w", err)
		default:
			rp.IsActive = true
			if conditions != nil {
				rp.Conditions = conditions
			}

			if err = tx.Omit(clause.Associations).Save(rp).Error; err != nil {
				return fmt.Errorf("failed to reactivate grant: %w", err)
			}
		}

		rp.Permission = perm

		return s.record(tx, audit, change{
			action: models.ActionGrant, model: models.ModelRolePermission, id: rp.ID,
			next: map[string]any{"role": role.Code, "permission": perm.Code},
		})
	})
	if err != nil {
		return nil, false, err
	}

	s.invalidateAll(ctx)

	return rp, created, nil
}

// RemovePermission deletes the grant of a permission to a role.
func (s *Service) RemovePermission(ctx context.Context, audit Audit, roleID, permissionID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rp models.RolePermission

		err := tx.Preload("Role").Preload("Permission").
			Where("role_id = ? AND permission_id = ?", roleID, permissionID).
			First(&rp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Role does not have this permission")
		}

		if err != nil {
			return fmt.Errorf("failed to look up grant: %w", err)
		}

		if err = s.record(tx, audit, change{
			action: models.ActionRevoke, model: models.ModelRolePermission, id: rp.ID,
			prev: map[string]any{"role": rp.Role.Code, "permission": rp.Permission.Code},
		}); err != nil {
			return err
		}

		return tx.Delete(&rp).Error
	})
	if err != nil {
		return err
	}

	s.invalidateAll(ctx)

	return nil
}

// SetPermissions replaces the full permission set of a role in one transaction.
func (s *Service) SetPermissions(ctx context.Context, audit Audit, roleID uint, permissionIDs []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.First(&role, roleID).Error; err != nil {
			return apperr.FromDB(err, "Role")
		}

		var perms []models.Permission
		if len(permissionIDs) > 0 {
			if err := tx.Where("id IN ?", permissionIDs).Find(&perms).Error; err != nil {
				return fmt.Errorf("failed to load permissions: %w", err)
			}
		}

		if len(perms) != len(unique(permissionIDs)) {
			return apperr.NotFound("Permission not found")
		}

		var before []string
		if err := tx.Model(&models.Permission{}).
			Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
			Where("role_permissions.role_id = ?", roleID).
			Order("permissions.code").
			Pluck("permissions.code", &before).Error; err != nil {
			return fmt.Errorf("failed to load grants: %w", err)
		}

		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear grants: %w", err)
		}

		after := make([]string, 0, len(perms))

		for _, p := range perms {
			rp := models.RolePermission{
				RoleID:       roleID,
				PermissionID: p.ID,
				IsActive:     true,
				GrantedByID:  audit.PerformedBy,
				GrantedAt:    s.now(),
			}
			if err := tx.Omit(clause.Associations).Create(&rp).Error; err != nil {
				return apperr.FromDB(err, "Role permission")
			}

			after = append(after, p.Code)
		}

		return s.record(tx, audit, change{
			action: models.ActionUpdate, model: models.ModelRole, id: role.ID,
			prev: map[string]any{"permissions": before}, next: map[string]any{"permissions": after},
		})
	})
	if err != nil {
		return err
	}

	s.invalidateAll(ctx)

	return nil
}

// DuplicateRole copies a role and its active grants under a new name and code.
// The copy is never a system role.
func (s *Service) DuplicateRole(ctx context.Context, audit Audit, roleID uint, name, code string) (*models.Role, error) {
	if name == "" || code == "" {
		return nil, apperr.Validation("name and code are required")
	}

	if !roleCodePattern.MatchString(code) {
		return nil, apperr.Validation("invalid input: Code").WithField("Code", "rolecode")
	}

	var copied models.Role

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var src models.Role
		if err := tx.First(&src, roleID).Error; err != nil {
			return apperr.FromDB(err, "Role")
		}

		copied = models.Role{
			Code:          code,
			Name:          name,
			Description:   "Copy of " + src.Name,
			Level:         src.Level,
			ApprovalScope: src.ApprovalScope,
			IsActive:      true,
			CanBeAssigned: src.CanBeAssigned,
		}

		if col, err := taken(tx, &models.Role{}, 0, map[string]string{"code": code, "name": name}); err != nil || col != "" {
			return alreadyExists("Role", col, err)
		}

		if err := tx.Create(&copied).Error; err != nil {
			return apperr.FromDB(err, "Role")
		}

		var grants []models.RolePermission
		if err := tx.Where("role_id = ? AND is_active = ?", src.ID, true).Find(&grants).Error; err != nil {
			return fmt.Errorf("failed to load grants: %w", err)
		}

		for _, g := range grants {
			rp := models.RolePermission{
				RoleID:       copied.ID,
				PermissionID: g.PermissionID,
				IsActive:     true,
				Conditions:   g.Conditions,
				GrantedByID:  audit.PerformedBy,
				GrantedAt:    s.now(),
			}
			if err := tx.Omit(clause.Associations).Create(&rp).Error; err != nil {
				return fmt.Errorf("failed to copy grant: %w", err)
			}
		}

		return s.record(tx, audit, change{
			action: models.ActionCreate, model: models.ModelRole, id: copied.ID,
			next: map[string]any{"code": copied.Code, "name": copied.Name, "duplicated_from": src.Code},
		})
	})
	if err != nil {
		return nil, err
	}

	return &copied, nil
}

// ListModules returns the active permission modules with their permissions.
func (s *Service) ListModules(ctx context.Context) ([]models.PermissionModule, error) {
	var out []models.PermissionModule

	err := s.db.WithContext(ctx).
		Preload("Permissions", func(db *gorm.DB) *gorm.DB { return db.Order("permissions.code") }).
		Where("is_active = ?", true).
		Order("sort_order").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list permission modules: %w", err)
	}

	return out, nil
}

// taken reports whether another row of model (id excluded) already uses one of the values.
func taken(tx *gorm.DB, model any, excludeID uint, cols map[string]string) (string, error) {
	for col, val := range cols {
		var count int64

		q := tx.Model(model).Where(col+" = ?", val)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}

		if err := q.Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check %s: %w", col, err)
		}

		if count > 0 {
			return col, nil
		}
	}

	return "", nil
}

func unique(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
