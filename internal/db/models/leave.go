package models

import (
	"time"

	"gorm.io/gorm"
)

// LeaveType is one of the fixed kinds of leave.
type LeaveType string

// Leave types.
const (
	LeaveVacation    LeaveType = "Vacation Leave"
	LeaveSick        LeaveType = "Sick Leave"
	LeaveBirthday    LeaveType = "Birthday Leave"
	LeaveSoloParent  LeaveType = "Solo Parent Leave"
	LeaveBereavement LeaveType = "Bereavement Leave"
	LeavePaternity   LeaveType = "Paternity Leave"
	LeaveMaternity   LeaveType = "Maternity Leave"
)

// LeaveTypes lists every leave type.
var LeaveTypes = []LeaveType{ //nolint:gochecknoglobals
	LeaveVacation,
	LeaveSick,
	LeaveBirthday,
	LeaveSoloParent,
	LeaveBereavement,
	LeavePaternity,
	LeaveMaternity,
}

// Valid reports whether t is a known leave type.
func (t LeaveType) Valid() bool {
	for _, lt := range LeaveTypes {
		if lt == t {
			return true
		}
	}

	return false
}

// LeaveStatus is the state of a leave request.
type LeaveStatus string

// Leave statuses.
const (
	StatusPending            LeaveStatus = "Pending"
	StatusSupervisorApproved LeaveStatus = "Supervisor_Approved"
	StatusApproved           LeaveStatus = "Approved"
	StatusRejected           LeaveStatus = "Rejected"
	StatusCancelled          LeaveStatus = "Cancelled"
)

// Terminal reports whether no further transition is possible.
func (s LeaveStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// Display returns the human readable status.
func (s LeaveStatus) Display() string {
	if s == StatusSupervisorApproved {
		return "Supervisor Approved"
	}

	return string(s)
}

// LeaveRequest is an employee's application for leave.
type LeaveRequest struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	EmployeeID    uint        `gorm:"index;not null" json:"employee_id"`
	Employee      *Employee   `gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE" json:"employee,omitempty"`
	LeaveType     LeaveType   `gorm:"size:50;not null" json:"leave_type"`
	StartDate     time.Time   `gorm:"not null" json:"start_date"`
	EndDate       time.Time   `gorm:"not null" json:"end_date"`
	DaysRequested int         `gorm:"not null" json:"days_requested"`
	Reason        string      `gorm:"type:text" json:"reason"`
	Status        LeaveStatus `gorm:"size:30;not null;index" json:"status"`
	// SupportingDocuments holds references to uploaded files.
	SupportingDocuments []string `gorm:"serializer:json;type:text" json:"supporting_documents,omitempty"`

	SupervisorApprovedByID  *uint      `json:"supervisor_approved_by_id,omitempty"`
	SupervisorApprovedBy    *Employee  `gorm:"foreignKey:SupervisorApprovedByID;constraint:OnDelete:SET NULL" json:"supervisor_approved_by,omitempty"`
	SupervisorApprovalDate  *time.Time `json:"supervisor_approval_date,omitempty"`
	SupervisorApprovalNotes string     `gorm:"type:text" json:"supervisor_approval_notes"`

	ApprovedByID  *uint      `json:"approved_by_id,omitempty"`
	ApprovedBy    *Employee  `gorm:"foreignKey:ApprovedByID;constraint:OnDelete:SET NULL" json:"approved_by,omitempty"`
	ApprovalDate  *time.Time `json:"approval_date,omitempty"`
	ApprovalNotes string     `gorm:"type:text" json:"approval_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the LeaveRequest model.
func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// LeaveCredit is the ledger row for one employee, leave type and calendar year.
// RemainingCredits is derived and recomputed on every save.
type LeaveCredit struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	EmployeeID       uint      `gorm:"not null;uniqueIndex:idx_leave_credit_key" json:"employee_id"`
	Employee         *Employee `gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE" json:"-"`
	LeaveType        LeaveType `gorm:"size:50;not null;uniqueIndex:idx_leave_credit_key" json:"leave_type"`
	Year             int       `gorm:"not null;uniqueIndex:idx_leave_credit_key" json:"year"`
	TotalCredits     float64   `gorm:"type:decimal(6,2);not null;default:0" json:"total_credits"`
	UsedCredits      float64   `gorm:"type:decimal(6,2);not null;default:0" json:"used_credits"`
	RemainingCredits float64   `gorm:"type:decimal(6,2);not null;default:0" json:"remaining_credits"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the LeaveCredit model.
func (LeaveCredit) TableName() string {
	return "leave_credits"
}

// BeforeSave keeps RemainingCredits equal to TotalCredits minus UsedCredits.
func (c *LeaveCredit) BeforeSave(_ *gorm.DB) error {
	c.RemainingCredits = c.TotalCredits - c.UsedCredits

	return nil
}

// LeavePolicy holds the default annual allowance of a leave type.
type LeavePolicy struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	LeaveType             LeaveType `gorm:"uniqueIndex;size:50;not null" json:"leave_type"`
	DaysAllowed           int       `gorm:"not null" json:"days_allowed"`
	Description           string    `gorm:"type:text" json:"description"`
	RequiresApproval      bool      `json:"requires_approval"`
	RequiresDocumentation bool      `json:"requires_documentation"`
	// ApplicablePositions lists the position types (Academic, Administration) the policy applies to, empty means all.
	ApplicablePositions []string  `gorm:"serializer:json;type:text" json:"applicable_positions"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the LeavePolicy model.
func (LeavePolicy) TableName() string {
	return "leave_policies"
}
