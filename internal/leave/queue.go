package leave

import (
	"context"
	"fmt"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/db/models"
	"github.com/univhr/hrcore/internal/rbac"
)

// Approver is someone who passes the approval scope check for an employee.
type Approver struct {
	ID            uint                 `json:"id"`
	Name          string               `json:"name"`
	Position      string               `json:"position"`
	Department    string               `json:"department"`
	RoleLevel     int                  `json:"role_level"`
	ApprovalScope models.ApprovalScope `json:"approval_scope"`
}

// Hierarchy is the list of potential approvers of one employee.
type Hierarchy struct {
	EmployeeID         uint       `json:"employee_id"`
	Name               string     `json:"name"`
	Position           string     `json:"position"`
	RoleLevel          int        `json:"role_level"`
	PotentialApprovers []Approver `json:"potential_approvers"`
}

func (s *Service) list(ctx context.Context, where string, args ...any) ([]models.LeaveRequest, error) {
	var out []models.LeaveRequest

	err := withPeople(s.db.WithContext(ctx)).
		Where(where, args...).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}

	return out, nil
}

// PendingForApproval returns the pending requests the caller may pre-approve.
func (s *Service) PendingForApproval(ctx context.Context, actor *rbac.Actor) ([]models.LeaveRequest, error) {
	if actor.ApprovalScope == models.ScopeNone {
		deny(actor, 0, "pending_for_approval")
		return nil, apperr.Forbidden("You don't have permission to approve leave requests")
	}

	pending, err := s.list(ctx, "status = ?", models.StatusPending)
	if err != nil {
		return nil, err
	}

	placements := make(map[uint]rbac.Placement)
	out := make([]models.LeaveRequest, 0, len(pending))

	for _, r := range pending {
		p, ok := placements[r.EmployeeID]
		if !ok {
			if p, err = s.rbac.Placement(ctx, r.EmployeeID); err != nil {
				return nil, err
			}

			placements[r.EmployeeID] = p
		}

		if rbac.Evaluate(actor, p) {
			out = append(out, r)
		}
	}

	return out, nil
}

func requireHR(actor *rbac.Actor, action string) error {
	if actor.IsHR {
		return nil
	}

	deny(actor, 0, action)

	return apperr.Forbidden("Only HR can access this endpoint")
}

// PendingForHR returns the supervisor approved requests waiting for HR.
func (s *Service) PendingForHR(ctx context.Context, actor *rbac.Actor) ([]models.LeaveRequest, error) {
	if err := requireHR(actor, "pending_for_hr"); err != nil {
		return nil, err
	}

	return s.list(ctx, "status = ?", models.StatusSupervisorApproved)
}

// AllPendingForHR returns every pending request, the queue HR uses for direct approval.
func (s *Service) AllPendingForHR(ctx context.Context, actor *rbac.Actor) ([]models.LeaveRequest, error) {
	if err := requireHR(actor, "all_pending_for_hr"); err != nil {
		return nil, err
	}

	return s.list(ctx, "status = ?", models.StatusPending)
}

// MyRequests returns the caller's own requests, newest first.
func (s *Service) MyRequests(ctx context.Context, actor *rbac.Actor) ([]models.LeaveRequest, error) {
	return s.list(ctx, "employee_id = ?", actor.Employee.ID)
}

// ByEmployee returns the requests of an active employee. The caller must be that
// employee or pass the approval scope check for them.
func (s *Service) ByEmployee(ctx context.Context, actor *rbac.Actor, employeeID uint) ([]models.LeaveRequest, error) {
	var target models.Employee
	if err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", employeeID, true).First(&target).Error; err != nil {
		return nil, apperr.FromDB(err, "Employee")
	}

	if actor.Employee.ID != target.ID {
		ok, err := s.rbac.CanAct(ctx, actor, target.ID)
		if err != nil {
			return nil, err
		}

		if !ok {
			deny(actor, target.ID, "by_employee")
			return nil, apperr.Forbidden("You don't have permission to view this employee's leave requests")
		}
	}

	return s.list(ctx, "employee_id = ?", target.ID)
}

// Get returns one request. Visible to its employee, HR, holders of
// leave_view_all and callers in approval scope of the employee.
func (s *Service) Get(ctx context.Context, actor *rbac.Actor, id uint) (*models.LeaveRequest, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.EmployeeID == actor.Employee.ID || actor.IsHR || actor.Has(rbac.PermLeaveViewAll) {
		return r, nil
	}

	ok, err := s.rbac.CanAct(ctx, actor, r.EmployeeID)
	if err != nil {
		return nil, err
	}

	if !ok {
		deny(actor, r.EmployeeID, "get")
		return nil, apperr.Forbidden("You don't have permission to view this leave request")
	}

	return r, nil
}

// ApprovalHierarchy lists every active employee who may act on the leave requests of employeeID.
func (s *Service) ApprovalHierarchy(ctx context.Context, employeeID uint) (*Hierarchy, error) {
	target, err := s.rbac.Actor(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	h := &Hierarchy{
		EmployeeID:         target.Employee.ID,
		Name:               target.Employee.FullName(),
		RoleLevel:          target.Placement.Level,
		PotentialApprovers: []Approver{},
	}

	if target.Employee.Position != nil {
		h.Position = target.Employee.Position.Title
	}

	var ids []uint
	if err = s.db.WithContext(ctx).Model(&models.Employee{}).
		Where("is_active = ? AND id <> ?", true, employeeID).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	for _, id := range ids {
		candidate, err := s.rbac.Actor(ctx, id)
		if err != nil {
			return nil, err
		}

		if !rbac.Evaluate(candidate, target.Placement) {
			continue
		}

		a := Approver{
			ID:            id,
			Name:          candidate.Employee.FullName(),
			RoleLevel:     candidate.HighestLevel,
			ApprovalScope: candidate.ApprovalScope,
		}

		if candidate.Employee.Position != nil {
			a.Position = candidate.Employee.Position.Title
		}

		if candidate.Employee.Department != nil {
			a.Department = candidate.Employee.Department.Name
		}

		h.PotentialApprovers = append(h.PotentialApprovers, a)
	}

	return h, nil
}
