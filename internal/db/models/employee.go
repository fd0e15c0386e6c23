package models

import (
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// Employee is a person in the organization. Every actor in the system is an employee.
type Employee struct {
	// ID is the internal identifier.
	ID uint `gorm:"primaryKey" json:"id"`
	// Code is the externally visible employee number (e.g. "EMP-0042").
	Code       string `gorm:"column:employee_id;uniqueIndex;size:50;not null" json:"employee_id"`
	FirstName  string `gorm:"size:100;not null" json:"first_name"`
	MiddleName string `gorm:"size:100" json:"middle_name,omitempty"`
	LastName   string `gorm:"size:100;not null" json:"last_name"`
	Suffix     string `gorm:"size:20" json:"suffix,omitempty"`
	Email      string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	// Password is the Argon2id hash used by local login.
	Password       string        `gorm:"size:255" json:"-"`
	OrganizationID *uint         `gorm:"index" json:"organization_id,omitempty"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:SET NULL" json:"organization,omitempty"`
	DepartmentID   *uint         `gorm:"index" json:"department_id,omitempty"`
	Department     *Department   `gorm:"foreignKey:DepartmentID;constraint:OnDelete:SET NULL" json:"department,omitempty"`
	ProgramID      *uint         `gorm:"index" json:"program_id,omitempty"`
	Program        *Program      `gorm:"foreignKey:ProgramID;constraint:OnDelete:SET NULL" json:"program,omitempty"`
	PositionID     *uint         `json:"position_id,omitempty"`
	Position       *Position     `gorm:"foreignKey:PositionID;constraint:OnDelete:SET NULL" json:"position,omitempty"`
	DateHired      *time.Time    `json:"date_hired,omitempty"`
	IsActive       bool          `gorm:"index" json:"is_active"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TableName specifies the database table name for the Employee model.
func (Employee) TableName() string {
	return "employees"
}

// FullName joins the non empty name parts.
func (e *Employee) FullName() string {
	parts := make([]string, 0, 4) //nolint:mnd

	for _, p := range []string{e.FirstName, e.MiddleName, e.LastName, e.Suffix} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, " ")
}

// PositionLevel returns the legacy hierarchy level of the employee's position.
// Position must be preloaded.
func (e *Employee) PositionLevel() int {
	return e.Position.Level()
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the stored hash.
func (e *Employee) VerifyPassword(password string) bool {
	if e.Password == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, e.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
