// Package credit serves the leave credit ledger.
package credit

import (
	"github.com/gofiber/fiber/v3"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/db/models"
	"github.com/univhr/hrcore/internal/leave"
	"github.com/univhr/hrcore/internal/rbac"
	"github.com/univhr/hrcore/internal/web/handler"
)

const (
	// Path is the path of the leave credits.
	Path = "/leave-credits"
)

// Service is the leave credit handler service.
type Service struct {
	handler.Service
	rbac   *rbac.Service
	ledger *leave.Ledger
}

// Allowance sets the total credits of one ledger row.
type Allowance struct {
	EmployeeID   uint             `json:"employee_id"`
	LeaveType    models.LeaveType `json:"leave_type"`
	Year         int              `json:"year"`
	TotalCredits *float64         `json:"total_credits"`
}

// PolicyRun seeds ledger rows from the leave policies.
type PolicyRun struct {
	EmployeeID *uint `json:"employee_id"`
	Year       int   `json:"year"`
	Force      bool  `json:"force"`
}

// Init initializes the leave credit handler.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.rbac = deps.RBAC
	s.ledger = deps.Leave.Ledger()

	manage := auth.RequireAnyPermission(rbac.PermLeaveManageCredits, rbac.PermHRFullAccess)

	r := router.Group(Path, auth.Authenticate(deps.Auth))
	r.Get(handler.RootPath, s.List)
	r.Put(handler.RootPath, manage, s.Put)
	r.Post("/apply-policies", manage, s.ApplyPolicies)

	return nil
}

// canView reports whether the caller may read the credits of employeeID.
func (s *Service) canView(c fiber.Ctx, employeeID uint) error {
	actor := auth.ActorFrom(c)
	if actor.Employee.ID == employeeID || actor.IsHR ||
		actor.HasAny(rbac.PermLeaveManageCredits, rbac.PermHRFullAccess, rbac.PermLeaveViewAll) {
		return nil
	}

	ok, err := s.rbac.CanAct(c.Context(), actor, employeeID)
	if err != nil {
		return err
	}

	if !ok {
		return apperr.Forbidden("You don't have permission to view this employee's leave credits")
	}

	return nil
}

// List returns the credit rows of ?employee_id, the caller by default, for ?year,
// the current year by default.
func (s *Service) List(c fiber.Ctx) error {
	employeeID, ok, err := handler.QueryID(c, "employee_id")
	if err != nil {
		return err
	}

	if !ok {
		employeeID = auth.ActorFrom(c).Employee.ID
	}

	year, err := handler.QueryInt(c, "year", s.rbac.Now().Year())
	if err != nil {
		return err
	}

	if err = s.canView(c, employeeID); err != nil {
		return err
	}

	credits, err := s.ledger.Balances(c.Context(), employeeID, year)
	if err != nil {
		return err
	}

	return c.JSON(credits)
}

// Put sets the total credits of a row, creating it when absent. Used credits are kept.
func (s *Service) Put(c fiber.Ctx) error {
	var in Allowance
	if err := handler.Body(c, &in); err != nil {
		return err
	}

	if in.EmployeeID == 0 || in.Year == 0 || in.TotalCredits == nil {
		return apperr.Validation("employee_id, year and total_credits are required")
	}

	credit, created, err := s.ledger.Upsert(c.Context(), in.EmployeeID, in.LeaveType, in.Year, *in.TotalCredits)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(credit)
}

// ApplyPolicies seeds the rows of a year from the leave policies.
func (s *Service) ApplyPolicies(c fiber.Ctx) error {
	var in PolicyRun
	if err := handler.Body(c, &in); err != nil {
		return err
	}

	if in.Year == 0 {
		in.Year = s.rbac.Now().Year()
	}

	report, err := s.ledger.ApplyPolicies(c.Context(), in.EmployeeID, in.Year, in.Force)
	if err != nil {
		return err
	}

	return c.JSON(report)
}
