package models

// PermissionModule groups permissions for the administration UI.
type PermissionModule struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Code        string       `gorm:"uniqueIndex;size:50;not null" json:"code"`
	Name        string       `gorm:"size:100;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Icon        string       `gorm:"size:50" json:"icon"`
	SortOrder   int          `json:"order"`
	IsActive    bool         `json:"is_active"`
	Permissions []Permission `gorm:"many2many:permission_module_permissions" json:"permissions"`
}

// TableName specifies the database table name for the PermissionModule model.
func (PermissionModule) TableName() string {
	return "permission_modules"
}
