package models

import "time"

// PermissionCategory groups permissions for display and filtering.
type PermissionCategory string

// Permission categories.
const (
	CategoryLeave        PermissionCategory = "leave"
	CategoryEmployee     PermissionCategory = "employee"
	CategoryReports      PermissionCategory = "reports"
	CategorySettings     PermissionCategory = "settings"
	CategoryOrganization PermissionCategory = "organization"
	CategoryAudit        PermissionCategory = "audit"
)

// PermissionCategories lists every category in display order.
var PermissionCategories = []PermissionCategory{ //nolint:gochecknoglobals
	CategoryLeave,
	CategoryEmployee,
	CategoryReports,
	CategoryOrganization,
	CategorySettings,
	CategoryAudit,
}

// Display returns the human readable category name.
func (c PermissionCategory) Display() string {
	switch c {
	case CategoryLeave:
		return "Leave Management"
	case CategoryEmployee:
		return "Employee Management"
	case CategoryReports:
		return "Reports"
	case CategorySettings:
		return "Settings"
	case CategoryOrganization:
		return "Organization"
	case CategoryAudit:
		return "Audit"
	default:
		return string(c)
	}
}

// Permission represents one atomic capability of the authorization system.
// Permissions are granted to roles through RolePermission.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey" json:"id"`
	// Code is the unique lowercase snake case identifier (e.g. "leave_approve_department").
	Code string `gorm:"uniqueIndex;size:100;not null" json:"code"`
	// Name is the display name.
	Name string `gorm:"size:200;not null" json:"name"`
	// Description is a free text explanation of what the permission grants.
	Description string `gorm:"type:text" json:"description"`
	// Category groups the permission (leave, employee, reports, settings, organization, audit).
	Category PermissionCategory `gorm:"size:20;not null;index" json:"category"`
	// IsSystem marks permissions that can not be deleted, only deactivated.
	IsSystem bool `json:"is_system"`
	// IsActive disables the permission everywhere without removing grants.
	IsActive bool `gorm:"index" json:"is_active"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
