package models

import "time"

// ChangeAction is the kind of change recorded in the RBAC audit trail.
type ChangeAction string

// Change actions.
const (
	ActionCreate ChangeAction = "create"
	ActionUpdate ChangeAction = "update"
	ActionDelete ChangeAction = "delete"
	ActionAssign ChangeAction = "assign"
	ActionRevoke ChangeAction = "revoke"
	ActionGrant  ChangeAction = "grant"
	ActionDeny   ChangeAction = "deny"
)

// ChangeModel is the model type a change log entry refers to.
type ChangeModel string

// Change model types.
const (
	ModelPermission     ChangeModel = "permission"
	ModelRole           ChangeModel = "role"
	ModelRolePermission ChangeModel = "role_permission"
	ModelEmployeeRole   ChangeModel = "employee_role"
)

// RBACChangeLog is one entry of the RBAC audit trail.
type RBACChangeLog struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Action             ChangeAction   `gorm:"size:20;not null;index" json:"action"`
	ModelType          ChangeModel    `gorm:"size:50;not null" json:"model_type"`
	ModelID            uint           `gorm:"not null" json:"model_id"`
	PreviousValue      map[string]any `gorm:"serializer:json;type:text" json:"previous_value,omitempty"`
	NewValue           map[string]any `gorm:"serializer:json;type:text" json:"new_value,omitempty"`
	PerformedByID      *uint          `gorm:"index" json:"performed_by,omitempty"`
	AffectedEmployeeID *uint          `gorm:"index" json:"affected_employee,omitempty"`
	PerformedAt        time.Time      `gorm:"index" json:"performed_at"`
	IPAddress          string         `gorm:"size:45" json:"ip_address,omitempty"`
	Notes              string         `gorm:"type:text" json:"notes"`
}

// TableName specifies the database table name for the RBACChangeLog model.
func (RBACChangeLog) TableName() string {
	return "rbac_change_logs"
}
