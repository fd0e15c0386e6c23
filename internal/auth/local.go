package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/univhr/hrcore/internal/db/models"
)

// MinPasswordLength is the shortest password SetPassword accepts.
const MinPasswordLength = 8

const whereID = "id = ?"

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate authenticates an employee by employee id or email against the local database.
func (p *LocalProvider) Authenticate(ctx context.Context, login, password string) (*models.Employee, error) {
	var emp models.Employee

	login = strings.TrimSpace(login)

	err := p.db.WithContext(ctx).
		Where("employee_id = ? OR LOWER(email) = ?", login, strings.ToLower(login)).
		First(&emp).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query employee: %w", err)
	}

	if !emp.IsActive {
		return nil, ErrUserAccountDisabled
	}

	if !emp.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	return &emp, nil
}

// SetPassword sets the password of an employee (admin function).
func (p *LocalProvider) SetPassword(ctx context.Context, employeeID uint, password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	res := p.db.WithContext(ctx).Model(&models.Employee{}).
		Where(whereID, employeeID).
		Update("password", models.HashPassword(password))
	if res.Error != nil {
		return fmt.Errorf("failed to set password: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ChangePassword changes an employee's password after checking the old one.
func (p *LocalProvider) ChangePassword(ctx context.Context, employeeID uint, oldPassword, newPassword string) error {
	var emp models.Employee
	err := p.db.WithContext(ctx).Where(whereID, employeeID).First(&emp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}

	if err != nil {
		return fmt.Errorf("failed to query employee: %w", err)
	}

	if !emp.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	return p.SetPassword(ctx, employeeID, newPassword)
}
