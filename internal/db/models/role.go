package models

import "time"

// ApprovalScope is the organizational breadth within which a role may approve leave requests.
type ApprovalScope string

// Approval scopes, narrowest first.
const (
	ScopeNone         ApprovalScope = "none"
	ScopeProgram      ApprovalScope = "program"
	ScopeDepartment   ApprovalScope = "department"
	ScopeOrganization ApprovalScope = "organization"
	ScopeAll          ApprovalScope = "all"
)

// Well known role levels. Lower is more senior.
const (
	LevelSuperAdmin   = -1
	LevelExecutive    = 0
	LevelDean         = 1
	LevelProgramChair = 2
	LevelSeniorStaff  = 3
	LevelStaff        = 4
	LevelBasic        = 5
	LevelUnranked     = 6
	LevelGuest        = 99
)

// Rank orders scopes by breadth: all > organization > department > program > none.
func (s ApprovalScope) Rank() int {
	switch s {
	case ScopeAll:
		return 4 //nolint:mnd
	case ScopeOrganization:
		return 3 //nolint:mnd
	case ScopeDepartment:
		return 2 //nolint:mnd
	case ScopeProgram:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the known scopes.
func (s ApprovalScope) Valid() bool {
	switch s {
	case ScopeNone, ScopeProgram, ScopeDepartment, ScopeOrganization, ScopeAll:
		return true
	default:
		return false
	}
}

// Role is a named bundle of permissions with a hierarchy level and an approval scope.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey" json:"id"`
	// Code is the unique uppercase snake case identifier (e.g. "PROGRAM_CHAIR").
	Code string `gorm:"uniqueIndex;size:50;not null" json:"code"`
	// Name is the unique display name.
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"type:text" json:"description"`
	// Level is the hierarchy rank, -1 super admin, 0 top executive, 99 guest.
	Level int `gorm:"not null;default:5;index" json:"level"`
	// ApprovalScope is the breadth within which holders may approve leave.
	ApprovalScope ApprovalScope `gorm:"size:20;not null;default:'none'" json:"approval_scope"`
	// IsSystem indicates if this is a system role that cannot be deleted.
	IsSystem bool `json:"is_system"`
	// IsActive disables every assignment of the role when false.
	IsActive bool `gorm:"index" json:"is_active"`
	// CanBeAssigned hides the role from assignment pickers when false.
	CanBeAssigned bool `json:"can_be_assigned"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
