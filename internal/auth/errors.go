package auth

import "errors"

var (
	// ErrInvalidOldPassword is returned when the provided old password does not match the employee's current password.
	ErrInvalidOldPassword = errors.New("invalid old password")

	// ErrUserAccountDisabled is returned when attempting to authenticate an inactive employee.
	ErrUserAccountDisabled = errors.New("employee account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when no employee matches the login.
	ErrUserNotFound = errors.New("employee not found")

	// ErrPasswordTooShort is returned when a new password is shorter than MinPasswordLength.
	ErrPasswordTooShort = errors.New("password too short")
)
