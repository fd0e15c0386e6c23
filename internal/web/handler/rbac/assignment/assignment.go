// Package assignment serves role assignments.
package assignment

import (
	"github.com/gofiber/fiber/v3"

	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/rbac"
	"github.com/univhr/hrcore/internal/web/handler"
)

const (
	// Path is the path of the role assignments.
	Path = "/rbac/assignments"
)

// Service is the assignment handler service.
type Service struct {
	handler.Service
	rbac *rbac.Service
}

// Init initializes the assignment handler.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.rbac = deps.RBAC

	assign := auth.RequirePermission(rbac.PermRBACAssignRoles)

	r := router.Group(Path, auth.Authenticate(deps.Auth))
	r.Get(handler.RootPath, auth.RequireAnyPermission(rbac.PermRBACView, rbac.PermRBACAssignRoles), s.List)
	r.Post(handler.RootPath, assign, s.Create)
	r.Post("/bulk", assign, s.Bulk)
	r.Put(handler.IDPath, assign, s.Update)
	r.Delete(handler.IDPath, assign, s.Delete)
	r.Post(handler.IDPath+"/primary", assign, s.Primary)

	return nil
}

// List returns assignments filtered by ?employee_id, ?role_id and ?active_only.
func (s *Service) List(c fiber.Ctx) error {
	var f rbac.AssignmentFilter

	employeeID, ok, err := handler.QueryID(c, "employee_id")
	if err != nil {
		return err
	}

	if ok {
		f.EmployeeID = &employeeID
	}

	roleID, ok, err := handler.QueryID(c, "role_id")
	if err != nil {
		return err
	}

	if ok {
		f.RoleID = &roleID
	}

	f.ActiveOnly = handler.QueryBool(c, "active_only")

	assignments, err := s.rbac.ListAssignments(c.Context(), f)
	if err != nil {
		return err
	}

	return c.JSON(assignments)
}

// Create assigns a role to an employee.
func (s *Service) Create(c fiber.Ctx) error {
	var in rbac.AssignmentInput
	if err := handler.Body(c, &in); err != nil {
		return err
	}

	a, err := s.rbac.Assign(c.Context(), handler.Audit(c, in.Notes), in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(a)
}

// Bulk assigns one role to many employees and reports per employee failures.
func (s *Service) Bulk(c fiber.Ctx) error {
	var in rbac.BulkAssignInput
	if err := handler.Body(c, &in); err != nil {
		return err
	}

	res, err := s.rbac.BulkAssign(c.Context(), handler.Audit(c, in.Notes), in)
	if err != nil {
		return err
	}

	return c.JSON(res)
}

// Update changes the activity, validity window or notes of an assignment.
func (s *Service) Update(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	var in rbac.AssignmentUpdate
	if err = handler.Body(c, &in); err != nil {
		return err
	}

	a, err := s.rbac.UpdateAssignment(c.Context(), handler.Audit(c, ""), id, in)
	if err != nil {
		return err
	}

	return c.JSON(a)
}

// Delete revokes an assignment.
func (s *Service) Delete(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err = s.rbac.Revoke(c.Context(), handler.Audit(c, ""), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Primary makes an assignment the primary one of its employee.
func (s *Service) Primary(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	a, err := s.rbac.SetPrimary(c.Context(), handler.Audit(c, ""), id)
	if err != nil {
		return err
	}

	return c.JSON(a)
}
