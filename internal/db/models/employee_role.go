package models

import "time"

// EmployeeRole binds an employee to a role, optionally narrowed to one department
// or program and optionally bounded in time.
// The tuple (employee, role, department scope, program scope) is unique.
type EmployeeRole struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	EmployeeID        uint        `gorm:"uniqueIndex:idx_employee_role_scope;not null" json:"employee_id"`
	Employee          *Employee   `gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE" json:"employee,omitempty"`
	RoleID            uint        `gorm:"uniqueIndex:idx_employee_role_scope;not null" json:"role_id"`
	Role              Role        `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"role"`
	DepartmentScopeID *uint       `gorm:"uniqueIndex:idx_employee_role_scope" json:"department_scope_id,omitempty"`
	DepartmentScope   *Department `gorm:"foreignKey:DepartmentScopeID;constraint:OnDelete:CASCADE" json:"department_scope,omitempty"`
	ProgramScopeID    *uint       `gorm:"uniqueIndex:idx_employee_role_scope" json:"program_scope_id,omitempty"`
	ProgramScope      *Program    `gorm:"foreignKey:ProgramScopeID;constraint:OnDelete:CASCADE" json:"program_scope,omitempty"`
	// IsPrimary marks the employee's main role. Not enforced by the database.
	IsPrimary bool `json:"is_primary"`
	IsActive  bool `gorm:"index" json:"is_active"`
	// ValidFrom and ValidUntil bound the assignment, nil means unbounded.
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
	AssignedByID *uint      `json:"assigned_by,omitempty"`
	AssignedAt   time.Time  `json:"assigned_at"`
	Notes        string     `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the database table name for the EmployeeRole model.
func (EmployeeRole) TableName() string {
	return "employee_roles"
}

// IsValid reports whether the assignment is active and now lies within its validity window.
func (a *EmployeeRole) IsValid(now time.Time) bool {
	if !a.IsActive {
		return false
	}

	if a.ValidFrom != nil && now.Before(*a.ValidFrom) {
		return false
	}

	if a.ValidUntil != nil && now.After(*a.ValidUntil) {
		return false
	}

	return true
}
