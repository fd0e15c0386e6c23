// Package permission serves the permission catalog.
package permission

import (
	"github.com/gofiber/fiber/v3"

	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/rbac"
	"github.com/univhr/hrcore/internal/web/handler"
)

const (
	// Path is the path of the permission catalog.
	Path = "/rbac/permissions"
)

// Service is the permission handler service.
type Service struct {
	handler.Service
	rbac *rbac.Service
}

// Init initializes the permission handler.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.rbac = deps.RBAC

	view := auth.RequirePermission(rbac.PermRBACView)
	manage := auth.RequirePermission(rbac.PermRBACManagePermissions)

	r := router.Group(Path, auth.Authenticate(deps.Auth))
	r.Get(handler.RootPath, view, s.List)
	r.Post(handler.RootPath, manage, s.Create)
	r.Get("/by-category", view, s.ByCategory)
	r.Get(handler.IDPath, view, s.Get)
	r.Put(handler.IDPath, manage, s.Update)
	r.Delete(handler.IDPath, manage, s.Delete)

	return nil
}

// List returns every permission, only the active ones with ?active_only=true.
func (s *Service) List(c fiber.Ctx) error {
	perms, err := s.rbac.ListPermissions(c.Context(), handler.QueryBool(c, "active_only"))
	if err != nil {
		return err
	}

	return c.JSON(perms)
}

// ByCategory returns the active permissions grouped by category.
func (s *Service) ByCategory(c fiber.Ctx) error {
	groups, err := s.rbac.PermissionsByCategory(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(groups)
}

// Get returns one permission.
func (s *Service) Get(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	p, err := s.rbac.GetPermission(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(p)
}

// Create adds a permission.
func (s *Service) Create(c fiber.Ctx) error {
	var in rbac.PermissionInput
	if err := handler.Body(c, &in); err != nil {
		return err
	}

	p, err := s.rbac.CreatePermission(c.Context(), handler.Audit(c, ""), in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(p)
}

// Update replaces the mutable fields of a permission.
func (s *Service) Update(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	var in rbac.PermissionInput
	if err = handler.Body(c, &in); err != nil {
		return err
	}

	p, err := s.rbac.UpdatePermission(c.Context(), handler.Audit(c, ""), id, in)
	if err != nil {
		return err
	}

	return c.JSON(p)
}

// Delete removes a permission. System permissions are refused.
func (s *Service) Delete(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err = s.rbac.DeletePermission(c.Context(), handler.Audit(c, ""), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
