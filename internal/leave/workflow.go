package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/db/controller/leavesettings"
	"github.com/univhr/hrcore/internal/db/models"
	"github.com/univhr/hrcore/internal/rbac"
)

const bypassTag = "[HR BYPASS] "

// Stage tells which approval record an approve or reject call wrote.
type Stage string

// Stages.
const (
	StageSupervisor Stage = "supervisor"
	StageHR         Stage = "hr"
)

// CreateInput is a new leave request.
type CreateInput struct {
	EmployeeID          uint             `json:"employee"             validate:"required"`
	LeaveType           models.LeaveType `json:"leave_type"           validate:"required"`
	StartDate           time.Time        `json:"start_date"           validate:"required"`
	EndDate             time.Time        `json:"end_date"             validate:"required"`
	DaysRequested       int              `json:"days_requested"       validate:"required,min=1"`
	Reason              string           `json:"reason"`
	SupportingDocuments []string         `json:"supporting_documents"`
}

// Service runs the leave request workflow.
type Service struct {
	db       *gorm.DB
	rbac     *rbac.Service
	ledger   *Ledger
	validate *validator.Validate
	defaults leavesettings.Settings
}

// NewService creates the workflow on the database of rbacService. defaults are used
// for every setting that was never saved at runtime.
func NewService(rbacService *rbac.Service, defaults leavesettings.Settings) *Service {
	db := rbacService.DB()

	return &Service{
		db:       db,
		rbac:     rbacService,
		ledger:   NewLedger(db),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		defaults: defaults,
	}
}

// Ledger returns the leave credit ledger.
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// Settings returns the effective workflow settings.
func (s *Service) Settings(ctx context.Context) (leavesettings.Settings, error) {
	st := s.defaults
	if err := st.Load(s.db.WithContext(ctx)); err != nil {
		return s.defaults, fmt.Errorf("failed to load leave settings: %w", err)
	}

	return st, nil
}

// SaveSettings validates and stores the workflow settings.
func (s *Service) SaveSettings(ctx context.Context, st leavesettings.Settings) error {
	if err := s.validate.Struct(st); err != nil {
		return apperr.FromValidator(err)
	}

	return st.Save(s.db.WithContext(ctx))
}

// Create files a leave request for in.EmployeeID. The caller must be that employee
// or pass the approval scope check for them.
func (s *Service) Create(ctx context.Context, actor *rbac.Actor, in CreateInput) (req *models.LeaveRequest, err error) {
	defer func() { observe(TransitionCreate, err) }()

	if err = s.validate.Struct(in); err != nil {
		return nil, apperr.FromValidator(err)
	}

	if err = checkType(in.LeaveType); err != nil {
		return nil, err
	}

	var target models.Employee
	if err = s.db.WithContext(ctx).Where("id = ? AND is_active = ?", in.EmployeeID, true).First(&target).Error; err != nil {
		return nil, apperr.FromDB(err, "Employee")
	}

	if actor.Employee.ID != target.ID {
		var ok bool
		if ok, err = s.rbac.CanAct(ctx, actor, target.ID); err != nil {
			return nil, err
		}

		if !ok {
			deny(actor, target.ID, TransitionCreate)
			return nil, apperr.Forbidden("You don't have permission to create leave requests for this employee")
		}
	}

	start, end := Date(in.StartDate), Date(in.EndDate)
	if end.Before(start) {
		return nil, apperr.Validation("end_date must not be before start_date").WithField("end_date", "gtefield=start_date")
	}

	if days := BusinessDays(start, end); days != in.DaysRequested {
		return nil, apperr.Validation(
			"Days requested (%d) does not match calculated business days (%d). "+
				"Business days are calculated Monday to Saturday, excluding Sunday.",
			in.DaysRequested, days,
		).WithField("days_requested", fmt.Sprintf("eq=%d", days))
	}

	st, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	if st.RequireReason && strings.TrimSpace(in.Reason) == "" {
		return nil, apperr.Validation("Reason is required").WithField("reason", "required")
	}

	req = &models.LeaveRequest{
		EmployeeID:          target.ID,
		LeaveType:           in.LeaveType,
		StartDate:           start,
		EndDate:             end,
		DaysRequested:       in.DaysRequested,
		Reason:              in.Reason,
		Status:              models.StatusPending,
		SupportingDocuments: in.SupportingDocuments,
	}

	if err = s.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error; err != nil {
		return nil, fmt.Errorf("failed to create leave request: %w", err)
	}

	log.Info().
		Uint("request_id", req.ID).
		Uint("actor_id", actor.Employee.ID).
		Uint("employee_id", target.ID).
		Str("to", string(req.Status)).
		Msg("leave request created")

	return s.load(ctx, req.ID)
}

// CreateForSelf files a leave request for the caller.
func (s *Service) CreateForSelf(ctx context.Context, actor *rbac.Actor, in CreateInput) (*models.LeaveRequest, error) {
	in.EmployeeID = actor.Employee.ID

	return s.Create(ctx, actor, in)
}

// SupervisorApprove pre-approves a pending request. The ledger is not touched.
func (s *Service) SupervisorApprove(
	ctx context.Context, actor *rbac.Actor, id uint, notes string,
) (req *models.LeaveRequest, err error) {
	defer func() { observe(TransitionSupervisorApprove, err) }()

	req, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.rbac.CanAct(ctx, actor, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	if !ok {
		deny(actor, req.EmployeeID, TransitionSupervisorApprove)
		return nil, apperr.Forbidden("You don't have permission to approve this leave request")
	}

	return s.transition(ctx, actor, id, TransitionSupervisorApprove, func(_ *gorm.DB, r *models.LeaveRequest) error {
		if r.Status != models.StatusPending {
			return apperr.Conflict("Cannot approve request with status: %s", r.Status)
		}

		now := s.rbac.Now()
		r.Status = models.StatusSupervisorApproved
		r.SupervisorApprovedByID = &actor.Employee.ID
		r.SupervisorApprovalDate = &now
		r.SupervisorApprovalNotes = notes

		return nil
	})
}

// HRApprove gives final approval to a supervisor approved request and debits the
// ledger. A failed debit leaves the request unchanged.
func (s *Service) HRApprove(
	ctx context.Context, actor *rbac.Actor, id uint, notes string,
) (req *models.LeaveRequest, err error) {
	defer func() { observe(TransitionHRApprove, err) }()

	if !actor.IsHR {
		deny(actor, 0, TransitionHRApprove)
		return nil, apperr.Forbidden("Only HR can give final approval")
	}

	return s.transition(ctx, actor, id, TransitionHRApprove, func(tx *gorm.DB, r *models.LeaveRequest) error {
		if r.Status != models.StatusSupervisorApproved {
			return apperr.Conflict(
				"Cannot give HR approval to request with status: %s. Request must be supervisor-approved first.", r.Status)
		}

		return s.finalApprove(tx, actor, r, notes)
	})
}

// HRDirectApprove approves a pending or supervisor approved request in one step.
// A pending request gets a supervisor record tagged as HR bypass first.
// bypassed reports whether the supervisor stage was skipped.
func (s *Service) HRDirectApprove(
	ctx context.Context, actor *rbac.Actor, id uint, notes, bypassReason string,
) (req *models.LeaveRequest, bypassed bool, err error) {
	defer func() { observe(TransitionHRDirectApprove, err) }()

	if !actor.IsHR {
		deny(actor, 0, TransitionHRDirectApprove)
		return nil, false, apperr.Forbidden("Only HR can use direct approval")
	}

	st, err := s.Settings(ctx)
	if err != nil {
		return nil, false, err
	}

	req, err = s.transition(ctx, actor, id, TransitionHRDirectApprove, func(tx *gorm.DB, r *models.LeaveRequest) error {
		if r.Status != models.StatusPending && r.Status != models.StatusSupervisorApproved {
			return apperr.Conflict("Cannot approve request with status: %s", r.Status)
		}

		if r.Status == models.StatusPending {
			bypassed = true
			now := s.rbac.Now()
			r.SupervisorApprovedByID = &actor.Employee.ID
			r.SupervisorApprovalDate = &now

			reason := strings.TrimSpace(bypassReason)
			if reason == "" {
				reason = st.HRBypassNote
			}

			r.SupervisorApprovalNotes = bypassTag + reason
		}

		return s.finalApprove(tx, actor, r, notes)
	})
	if err != nil {
		return nil, false, err
	}

	return req, bypassed, nil
}

// finalApprove debits the ledger and writes the HR approval record.
func (s *Service) finalApprove(tx *gorm.DB, actor *rbac.Actor, r *models.LeaveRequest, notes string) error {
	if _, err := s.ledger.Debit(tx, r.EmployeeID, r.LeaveType, r.StartDate.Year(), float64(r.DaysRequested)); err != nil {
		return err
	}

	now := s.rbac.Now()
	r.Status = models.StatusApproved
	r.ApprovedByID = &actor.Employee.ID
	r.ApprovalDate = &now
	r.ApprovalNotes = notes

	return nil
}

// Approve routes to the stage the request is waiting for: HR approval for HR on a
// supervisor approved request, supervisor approval for an in scope caller on a pending one.
func (s *Service) Approve(ctx context.Context, actor *rbac.Actor, id uint, notes string) (*models.LeaveRequest, Stage, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if actor.IsHR && req.Status == models.StatusSupervisorApproved {
		req, err = s.HRApprove(ctx, actor, id, notes)
		return req, StageHR, err
	}

	ok, err := s.rbac.CanAct(ctx, actor, req.EmployeeID)
	if err != nil {
		return nil, "", err
	}

	switch {
	case ok && req.Status == models.StatusPending:
		req, err = s.SupervisorApprove(ctx, actor, id, notes)
		return req, StageSupervisor, err
	case req.Status == models.StatusPending:
		deny(actor, req.EmployeeID, "approve")
		return nil, "", apperr.Forbidden("You don't have permission to approve this leave request")
	case req.Status == models.StatusSupervisorApproved:
		deny(actor, req.EmployeeID, "approve")
		return nil, "", apperr.Forbidden("This request is awaiting HR final approval. Only HR can approve it.")
	default:
		return nil, "", apperr.Conflict("Cannot approve request with status: %s", req.Status)
	}
}

// Reject rejects a pending or supervisor approved request. HR rejecting a
// supervisor approved request fills the HR record, every other rejection the
// supervisor record.
func (s *Service) Reject(
	ctx context.Context, actor *rbac.Actor, id uint, reason string,
) (req *models.LeaveRequest, stage Stage, err error) {
	defer func() { observe(TransitionReject, err) }()

	req, err = s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}

	allowed := actor.IsHR
	if !allowed {
		if allowed, err = s.rbac.CanAct(ctx, actor, req.EmployeeID); err != nil {
			return nil, "", err
		}
	}

	if !allowed {
		deny(actor, req.EmployeeID, TransitionReject)
		return nil, "", apperr.Forbidden("You don't have permission to reject this leave request")
	}

	req, err = s.transition(ctx, actor, id, TransitionReject, func(_ *gorm.DB, r *models.LeaveRequest) error {
		if r.Status != models.StatusPending && r.Status != models.StatusSupervisorApproved {
			return apperr.Conflict("Cannot reject request with status: %s", r.Status)
		}

		if strings.TrimSpace(reason) == "" {
			return apperr.Validation("Rejection reason is required").WithField("approval_notes", "required")
		}

		now := s.rbac.Now()
		stage = StageSupervisor

		if actor.IsHR && r.Status == models.StatusSupervisorApproved {
			stage = StageHR
			r.ApprovedByID = &actor.Employee.ID
			r.ApprovalDate = &now
			r.ApprovalNotes = reason
		} else {
			r.SupervisorApprovedByID = &actor.Employee.ID
			r.SupervisorApprovalDate = &now
			r.SupervisorApprovalNotes = reason
		}

		r.Status = models.StatusRejected

		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return req, stage, nil
}

// Cancel withdraws the caller's own pending request.
func (s *Service) Cancel(ctx context.Context, actor *rbac.Actor, id uint) (req *models.LeaveRequest, err error) {
	defer func() { observe(TransitionCancel, err) }()

	return s.transition(ctx, actor, id, TransitionCancel, func(_ *gorm.DB, r *models.LeaveRequest) error {
		if r.EmployeeID != actor.Employee.ID {
			deny(actor, r.EmployeeID, TransitionCancel)
			return apperr.Forbidden("You can only cancel your own leave requests")
		}

		if r.Status != models.StatusPending {
			return apperr.Conflict("Cannot cancel request with status: %s", r.Status)
		}

		r.Status = models.StatusCancelled

		return nil
	})
}

// transition locks the request, applies fn and saves it in one transaction.
// fn returning an error rolls back everything it did, ledger writes included.
func (s *Service) transition(
	ctx context.Context, actor *rbac.Actor, id uint, name string,
	fn func(tx *gorm.DB, r *models.LeaveRequest) error,
) (*models.LeaveRequest, error) {
	var (
		from, to  models.LeaveStatus
		leaveType models.LeaveType
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.LeaveRequest
		if err := forUpdate(tx).First(&r, id).Error; err != nil {
			return apperr.FromDB(err, "Leave request")
		}

		from = r.Status
		leaveType = r.LeaveType

		if err := fn(tx, &r); err != nil {
			return err
		}

		to = r.Status

		if err := tx.Omit(clause.Associations).Save(&r).Error; err != nil {
			return fmt.Errorf("failed to save leave request: %w", err)
		}

		return nil
	})
	if err != nil {
		logFailure(err, actor, id, name)
		return nil, err
	}

	// final approval is the only transition that debits the ledger
	if to == models.StatusApproved && from != to {
		debits.WithLabelValues(string(leaveType)).Inc()
	}

	log.Info().
		Uint("request_id", id).
		Uint("actor_id", actor.Employee.ID).
		Str("transition", name).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("leave request transition")

	return s.load(ctx, id)
}

// load returns a request with its employee and approvers.
func (s *Service) load(ctx context.Context, id uint) (*models.LeaveRequest, error) {
	var r models.LeaveRequest

	err := withPeople(s.db.WithContext(ctx)).First(&r, id).Error
	if err != nil {
		return nil, apperr.FromDB(err, "Leave request")
	}

	return &r, nil
}

func withPeople(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Employee.Position").
		Preload("Employee.Department").
		Preload("SupervisorApprovedBy").
		Preload("ApprovedBy")
}

func deny(actor *rbac.Actor, targetID uint, action string) {
	ev := log.Warn().Uint("actor_id", actor.Employee.ID).Str("action", action)
	if targetID != 0 {
		ev = ev.Uint("employee_id", targetID)
	}

	ev.Msg("leave action denied")
}

func logFailure(err error, actor *rbac.Actor, id uint, name string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return
	}

	log.Error().Err(err).
		Uint("request_id", id).
		Uint("actor_id", actor.Employee.ID).
		Str("transition", name).
		Msg("leave request transition failed")
}
