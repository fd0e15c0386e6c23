package models

import "time"

// RolePermission grants a permission to a role.
// A grant can be soft revoked with IsActive and carries optional policy conditions
// (e.g. {"max_days": 5}) that the core stores but does not interpret.
type RolePermission struct {
	// ID is the unique identifier for the grant.
	ID uint `gorm:"primaryKey" json:"id"`
	// RoleID is the ID of the role in this mapping.
	RoleID uint `gorm:"uniqueIndex:idx_role_permission;not null" json:"role_id"`
	// PermissionID is the ID of the permission in this mapping.
	PermissionID uint `gorm:"uniqueIndex:idx_role_permission;not null" json:"permission_id"`
	// Role is the associated role.
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
	// Permission is the associated permission.
	Permission Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE" json:"permission"`
	// IsActive soft revokes the grant without deleting it.
	IsActive bool `json:"is_active"`
	// Conditions is opaque structured policy data.
	Conditions map[string]any `gorm:"serializer:json;type:text" json:"conditions,omitempty"`
	// GrantedByID is the employee who created the grant.
	GrantedByID *uint `json:"granted_by,omitempty"`
	// GrantedAt is the timestamp of the grant.
	GrantedAt time.Time `json:"granted_at"`
}

// TableName specifies the database table name for the RolePermission model.
func (RolePermission) TableName() string {
	return "role_permissions"
}
