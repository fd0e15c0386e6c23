// Package request serves leave requests and their approval workflow.
package request

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/auth"
	"github.com/univhr/hrcore/internal/db/models"
	"github.com/univhr/hrcore/internal/leave"
	"github.com/univhr/hrcore/internal/rbac"
	"github.com/univhr/hrcore/internal/web/handler"
)

const (
	// Path is the path of the leave requests.
	Path = "/leave-requests"
)

// Service is the leave request handler service.
type Service struct {
	handler.Service
	rbac  *rbac.Service
	leave *leave.Service
}

// NewRequest is the body of a new leave request. Dates are YYYY-MM-DD.
type NewRequest struct {
	Employee            uint             `json:"employee"`
	LeaveType           models.LeaveType `json:"leave_type"`
	StartDate           string           `json:"start_date"`
	EndDate             string           `json:"end_date"`
	DaysRequested       int              `json:"days_requested"`
	Reason              string           `json:"reason"`
	SupportingDocuments []string         `json:"supporting_documents"`
}

// Decision is the body of the approve and reject actions.
type Decision struct {
	ApprovalNotes string `json:"approval_notes"`
	BypassReason  string `json:"bypass_reason"`
}

type approverInfo struct {
	Name          string               `json:"name"`
	Position      string               `json:"position"`
	Department    string               `json:"department"`
	RoleLevel     int                  `json:"role_level"`
	ApprovalScope models.ApprovalScope `json:"approval_scope"`
	ApprovalType  string               `json:"approval_type"`
}

// Init initializes the leave request handler.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.rbac = deps.RBAC
	s.leave = deps.Leave

	r := router.Group(Path, auth.Authenticate(deps.Auth))
	r.Post(handler.RootPath, s.Create)
	r.Post("/my", s.CreateMine)
	r.Get("/my", s.Mine)
	r.Get("/pending-approval", s.PendingApproval)
	r.Get("/pending-hr", s.PendingHR)
	r.Get("/all-pending-hr", s.AllPendingHR)
	r.Get("/by-employee", s.ByEmployee)
	r.Get("/approval-hierarchy", s.Hierarchy)
	r.Get(handler.IDPath, s.Get)
	r.Post(handler.IDPath+"/supervisor_approve", s.SupervisorApprove)
	r.Post(handler.IDPath+"/hr_approve", s.HRApprove)
	r.Post(handler.IDPath+"/hr_direct_approve", s.HRDirectApprove)
	r.Post(handler.IDPath+"/approve", s.Approve)
	r.Post(handler.IDPath+"/reject", s.Reject)
	r.Post(handler.IDPath+"/cancel", s.Cancel)

	return nil
}

func (n NewRequest) input() (leave.CreateInput, error) {
	in := leave.CreateInput{
		EmployeeID:          n.Employee,
		LeaveType:           n.LeaveType,
		DaysRequested:       n.DaysRequested,
		Reason:              n.Reason,
		SupportingDocuments: n.SupportingDocuments,
	}

	var err error
	if in.StartDate, err = leave.ParseDate("start_date", n.StartDate); err != nil {
		return in, err
	}

	if in.EndDate, err = leave.ParseDate("end_date", n.EndDate); err != nil {
		return in, err
	}

	return in, nil
}

func info(actor *rbac.Actor, approvalType string) approverInfo {
	i := approverInfo{
		Name:          actor.Employee.FullName(),
		RoleLevel:     actor.Placement.Level,
		ApprovalScope: actor.ApprovalScope,
		ApprovalType:  approvalType,
	}

	if actor.Employee.Position != nil {
		i.Position = actor.Employee.Position.Title
	}

	if actor.Employee.Department != nil {
		i.Department = actor.Employee.Department.Name
	}

	return i
}

func (s *Service) create(c fiber.Ctx, mine bool) error {
	var body NewRequest
	if err := handler.Body(c, &body); err != nil {
		return err
	}

	in, err := body.input()
	if err != nil {
		return err
	}

	actor := auth.ActorFrom(c)

	var req *models.LeaveRequest
	if mine {
		req, err = s.leave.CreateForSelf(c.Context(), actor, in)
	} else {
		req, err = s.leave.Create(c.Context(), actor, in)
	}

	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Leave request created successfully",
		"request": req,
	})
}

// Create files a leave request for the employee named in the body.
func (s *Service) Create(c fiber.Ctx) error {
	return s.create(c, false)
}

// CreateMine files a leave request for the caller.
func (s *Service) CreateMine(c fiber.Ctx) error {
	return s.create(c, true)
}

// Mine returns the caller's own requests, newest first.
func (s *Service) Mine(c fiber.Ctx) error {
	reqs, err := s.leave.MyRequests(c.Context(), auth.ActorFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(reqs)
}

// PendingApproval returns the pending requests the caller may pre-approve.
func (s *Service) PendingApproval(c fiber.Ctx) error {
	actor := auth.ActorFrom(c)

	reqs, err := s.leave.PendingForApproval(c.Context(), actor)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"requests": reqs, "approver_info": info(actor, "supervisor")})
}

// PendingHR returns the supervisor approved requests awaiting HR.
func (s *Service) PendingHR(c fiber.Ctx) error {
	actor := auth.ActorFrom(c)

	reqs, err := s.leave.PendingForHR(c.Context(), actor)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"requests": reqs, "approver_info": info(actor, "hr")})
}

// AllPendingHR returns every pending request for HR direct approval.
func (s *Service) AllPendingHR(c fiber.Ctx) error {
	actor := auth.ActorFrom(c)

	reqs, err := s.leave.AllPendingForHR(c.Context(), actor)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"requests": reqs, "approver_info": info(actor, "hr_bypass")})
}

// ByEmployee returns the requests of ?employee_id.
func (s *Service) ByEmployee(c fiber.Ctx) error {
	employeeID, ok, err := handler.QueryID(c, "employee_id")
	if err != nil {
		return err
	}

	if !ok {
		return apperr.Validation("employee_id parameter required").WithField("employee_id", "required")
	}

	reqs, err := s.leave.ByEmployee(c.Context(), auth.ActorFrom(c), employeeID)
	if err != nil {
		return err
	}

	return c.JSON(reqs)
}

// Hierarchy returns the potential approvers of ?employee_id, the caller by default.
func (s *Service) Hierarchy(c fiber.Ctx) error {
	actor := auth.ActorFrom(c)

	employeeID, ok, err := handler.QueryID(c, "employee_id")
	if err != nil {
		return err
	}

	if !ok {
		employeeID = actor.Employee.ID
	}

	if employeeID != actor.Employee.ID && !actor.IsHR && !actor.Has(rbac.PermLeaveViewAll) {
		allowed, err := s.rbac.CanAct(c.Context(), actor, employeeID)
		if err != nil {
			return err
		}

		if !allowed {
			return apperr.Forbidden("You don't have permission to view this employee's approvers")
		}
	}

	h, err := s.leave.ApprovalHierarchy(c.Context(), employeeID)
	if err != nil {
		return err
	}

	return c.JSON(h)
}

// Get returns one request.
func (s *Service) Get(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	req, err := s.leave.Get(c.Context(), auth.ActorFrom(c), id)
	if err != nil {
		return err
	}

	return c.JSON(req)
}

func decision(c fiber.Ctx) (uint, Decision, error) {
	var d Decision

	id, err := handler.ParamID(c, "id")
	if err != nil {
		return 0, d, err
	}

	err = handler.Body(c, &d)

	return id, d, err
}

// SupervisorApprove pre-approves a pending request.
func (s *Service) SupervisorApprove(c fiber.Ctx) error {
	id, d, err := decision(c)
	if err != nil {
		return err
	}

	req, err := s.leave.SupervisorApprove(c.Context(), auth.ActorFrom(c), id, d.ApprovalNotes)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Leave request pre-approved by supervisor. Awaiting HR final approval.",
		"request": req,
	})
}

// HRApprove gives final approval to a supervisor approved request.
func (s *Service) HRApprove(c fiber.Ctx) error {
	id, d, err := decision(c)
	if err != nil {
		return err
	}

	req, err := s.leave.HRApprove(c.Context(), auth.ActorFrom(c), id, d.ApprovalNotes)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Leave request approved by HR. Leave credits deducted.",
		"request": req,
	})
}

// HRDirectApprove approves a request in one step, bypassing a missing supervisor approval.
func (s *Service) HRDirectApprove(c fiber.Ctx) error {
	id, d, err := decision(c)
	if err != nil {
		return err
	}

	req, bypassed, err := s.leave.HRDirectApprove(c.Context(), auth.ActorFrom(c), id, d.ApprovalNotes, d.BypassReason)
	if err != nil {
		return err
	}

	msg := "Leave request approved by HR"
	if bypassed {
		msg += " (Supervisor approval bypassed)"
	}

	return c.JSON(fiber.Map{
		"message":             msg + ". Leave credits deducted.",
		"request":             req,
		"bypassed_supervisor": bypassed,
	})
}

// Approve approves the stage the request is waiting for.
func (s *Service) Approve(c fiber.Ctx) error {
	id, d, err := decision(c)
	if err != nil {
		return err
	}

	req, stage, err := s.leave.Approve(c.Context(), auth.ActorFrom(c), id, d.ApprovalNotes)
	if err != nil {
		return err
	}

	msg := "Leave request pre-approved by supervisor. Awaiting HR final approval."
	if stage == leave.StageHR {
		msg = "Leave request approved by HR. Leave credits deducted."
	}

	return c.JSON(fiber.Map{"message": msg, "request": req, "stage": stage})
}

// Reject rejects a pending or supervisor approved request. The reason is read from approval_notes.
func (s *Service) Reject(c fiber.Ctx) error {
	id, d, err := decision(c)
	if err != nil {
		return err
	}

	req, stage, err := s.leave.Reject(c.Context(), auth.ActorFrom(c), id, d.ApprovalNotes)
	if err != nil {
		return err
	}

	by := "supervisor"
	if stage == leave.StageHR {
		by = strings.ToUpper(string(stage))
	}

	return c.JSON(fiber.Map{"message": "Leave request rejected by " + by, "request": req, "stage": stage})
}

// Cancel withdraws the caller's own pending request.
func (s *Service) Cancel(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return err
	}

	req, err := s.leave.Cancel(c.Context(), auth.ActorFrom(c), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Leave request cancelled", "request": req})
}
