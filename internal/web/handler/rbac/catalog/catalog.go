// Package catalog serves the read side of the RBAC catalog: permission modules,
// the change log, statistics and permission checks.
package catalog

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/db/models"
	"github.com/univhr/hrcore/internal/leave"
	"github.com/univhr/hrcore/internal/rbac"
	"github.com/univhr/hrcore/internal/web/handler"
)

const (
	// Path is the path of the RBAC catalog.
	Path = "/rbac"
)

// Service is the catalog handler service.
type Service struct {
	handler.Service
	rbac *rbac.Service
}

type check struct {
	EmployeeID uint   `json:"employee_id"`
	Permission string `json:"permission"`
}

// Init initializes the catalog handler.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.rbac = deps.RBAC

	authn := auth.Authenticate(deps.Auth)
	view := auth.RequirePermission(rbac.PermRBACView)

	r := router.Group(Path)
	r.Get("/modules", authn, view, s.Modules)
	r.Get("/changelog", authn, auth.RequireAnyPermission(rbac.PermAuditView, rbac.PermRBACView), s.ChangeLog)
	r.Get("/stats", authn, view, s.Stats)
	r.Post("/check", authn, s.Check)
	r.Get("/employees/permissions", authn, s.ByEmail)
	r.Get("/employees/:id/permissions", authn, s.Employee)

	return nil
}

// self reports whether the caller may read the permissions of employeeID.
func self(c fiber.Ctx, employeeID uint) error {
	actor := auth.ActorFrom(c)
	if actor.Employee.ID == employeeID || actor.Has(rbac.PermRBACView) {
		return nil
	}

	return apperr.Forbidden("You don't have permission to view other employees' permissions")
}

// Modules returns the active permission modules with their permissions.
func (s *Service) Modules(c fiber.Ctx) error {
	modules, err := s.rbac.ListModules(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(modules)
}

// ChangeLog returns change log entries filtered by ?start, ?end, ?action,
// ?employee_id and ?limit, newest first.
func (s *Service) ChangeLog(c fiber.Ctx) error {
	f := rbac.ChangeLogFilter{Action: models.ChangeAction(strings.TrimSpace(c.Query("action")))}

	if raw := c.Query("start"); raw != "" {
		start, err := leave.ParseDate("start", raw)
		if err != nil {
			return err
		}

		f.Start = &start
	}

	if raw := c.Query("end"); raw != "" {
		end, err := leave.ParseDate("end", raw)
		if err != nil {
			return err
		}

		end = end.Add(24*time.Hour - time.Nanosecond)
		f.End = &end
	}

	employeeID, ok, err := handler.QueryID(c, "employee_id")
	if err != nil {
		return err
	}

	if ok {
		f.EmployeeID = &employeeID
	}

	if f.Limit, err = handler.QueryInt(c, "limit", 0); err != nil {
		return err
	}

	entries, err := s.rbac.ListChangeLog(c.Context(), f)
	if err != nil {
		return err
	}

	return c.JSON(entries)
}

// Stats summarizes the catalog.
func (s *Service) Stats(c fiber.Ctx) error {
	stats, err := s.rbac.Stats(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(stats)
}

// Check reports whether an employee, the caller when none is given, holds a permission.
func (s *Service) Check(c fiber.Ctx) error {
	var in check
	if err := handler.Body(c, &in); err != nil {
		return err
	}

	if strings.TrimSpace(in.Permission) == "" {
		return apperr.Validation("permission is required").WithField("permission", "required")
	}

	if in.EmployeeID == 0 {
		in.EmployeeID = auth.ActorFrom(c).Employee.ID
	}

	if err := self(c, in.EmployeeID); err != nil {
		return err
	}

	res, err := s.rbac.CheckPermission(c.Context(), in.EmployeeID, in.Permission)
	if err != nil {
		return err
	}

	return c.JSON(res)
}

// Employee returns the resolved permissions of one employee.
func (s *Service) Employee(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	if err = self(c, id); err != nil {
		return err
	}

	res, err := s.rbac.Resolve(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(res)
}

// ByEmail returns the resolved permissions of the employee with ?email.
func (s *Service) ByEmail(c fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		return apperr.Validation("email parameter required").WithField("email", "required")
	}

	actor := auth.ActorFrom(c)
	if !strings.EqualFold(actor.Employee.Email, email) && !actor.Has(rbac.PermRBACView) {
		return apperr.Forbidden("You don't have permission to view other employees' permissions")
	}

	emp, res, err := s.rbac.ResolveByEmail(c.Context(), email)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"employee": emp, "rbac": res})
}
