// Package role serves the role catalog and the permissions granted to each role.
package role

import (
	"github.com/gofiber/fiber/v3"

	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/rbac"
	"github.com/univhr/hrcore/internal/web/handler"
)

const (
	// Path is the path of the role catalog.
	Path = "/rbac/roles"

	permissionPath = handler.IDPath + "/permissions"
)

// Service is the role handler service.
type Service struct {
	handler.Service
	rbac *rbac.Service
}

type grant struct {
	PermissionID uint           `json:"permission_id"`
	Conditions   map[string]any `json:"conditions"`
}

type grantSet struct {
	PermissionIDs []uint `json:"permission_ids"`
}

type duplicate struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Init initializes the role handler.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.rbac = deps.RBAC

	view := auth.RequirePermission(rbac.PermRBACView)
	manage := auth.RequirePermission(rbac.PermRBACManageRoles)

	r := router.Group(Path, auth.Authenticate(deps.Auth))
	r.Get(handler.RootPath, view, s.List)
	r.Post(handler.RootPath, manage, s.Create)
	r.Get("/assignable", view, s.Assignable)
	r.Get(handler.IDPath, view, s.Get)
	r.Put(handler.IDPath, manage, s.Update)
	r.Delete(handler.IDPath, manage, s.Delete)
	r.Post(permissionPath, manage, s.AddPermission)
	r.Put(permissionPath, manage, s.SetPermissions)
	r.Delete(permissionPath+"/:permissionId", manage, s.RemovePermission)
	r.Get(handler.IDPath+"/employees", view, s.Employees)
	r.Post(handler.IDPath+"/duplicate", manage, s.Duplicate)

	return nil
}

// List returns every role, only the active ones with ?active_only=true.
func (s *Service) List(c fiber.Ctx) error {
	roles, err := s.rbac.ListRoles(c.Context(), handler.QueryBool(c, "active_only"))
	if err != nil {
		return err
	}

	return c.JSON(roles)
}

// Assignable returns the roles that can be handed out, by level.
func (s *Service) Assignable(c fiber.Ctx) error {
	roles, err := s.rbac.AssignableRoles(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(roles)
}

// Get returns a role with its granted permissions.
func (s *Service) Get(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	role, err := s.rbac.GetRole(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(role)
}

// Create adds a role.
func (s *Service) Create(c fiber.Ctx) error {
	var in rbac.RoleInput
	if err := handler.Body(c, &in); err != nil {
		return err
	}

	role, err := s.rbac.CreateRole(c.Context(), handler.Audit(c, ""), in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(role)
}

// Update replaces the mutable fields of a role.
func (s *Service) Update(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	var in rbac.RoleInput
	if err = handler.Body(c, &in); err != nil {
		return err
	}

	role, err := s.rbac.UpdateRole(c.Context(), handler.Audit(c, ""), id, in)
	if err != nil {
		return err
	}

	return c.JSON(role)
}

// Delete removes a role without assignments. System roles are refused.
func (s *Service) Delete(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err = s.rbac.DeleteRole(c.Context(), handler.Audit(c, ""), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AddPermission grants one permission to the role.
func (s *Service) AddPermission(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	var in grant
	if err = handler.Body(c, &in); err != nil {
		return err
	}

	rp, created, err := s.rbac.AddPermission(c.Context(), handler.Audit(c, ""), id, in.PermissionID, in.Conditions)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(fiber.Map{"created": created, "role_permission": rp})
}

// SetPermissions replaces the full permission set of the role.
func (s *Service) SetPermissions(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	var in grantSet
	if err = handler.Body(c, &in); err != nil {
		return err
	}

	if err = s.rbac.SetPermissions(c.Context(), handler.Audit(c, ""), id, in.PermissionIDs); err != nil {
		return err
	}

	role, err := s.rbac.GetRole(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(role)
}

// RemovePermission revokes one permission from the role.
func (s *Service) RemovePermission(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	permissionID, err := handler.ParamID(c, "permissionId")
	if err != nil {
		return err
	}

	if err = s.rbac.RemovePermission(c.Context(), handler.Audit(c, ""), id, permissionID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Employees returns the active assignments of the role.
func (s *Service) Employees(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	assignments, err := s.rbac.RoleEmployees(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(assignments)
}

// Duplicate copies the role and its active grants under a new name and code.
func (s *Service) Duplicate(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	var in duplicate
	if err = handler.Body(c, &in); err != nil {
		return err
	}

	role, err := s.rbac.DuplicateRole(c.Context(), handler.Audit(c, ""), id, in.Name, in.Code)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(role)
}
