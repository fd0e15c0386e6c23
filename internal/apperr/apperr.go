// Package apperr defines the error kinds surfaced by the RBAC and leave core.
//
// Every error returned by a core operation either wraps one of the kind
// sentinels below or is an unexpected storage failure. Callers inspect the
// kind with errors.Is, the REST adapter maps it to a status code.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced employee, role, permission or leave request does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated is returned when no caller identity could be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when the caller fails the permission, scope, level or HR gate.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when a transition is attempted from a status that does not permit it.
	ErrConflict = errors.New("conflict")

	// ErrValidation is returned for bad input, e.g. a days mismatch or a missing rejection reason.
	ErrValidation = errors.New("validation error")

	// ErrInsufficientCredits is returned when a ledger debit would drive remaining credits below zero.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrIntegrity is returned on a uniqueness violation, e.g. a duplicate role assignment.
	ErrIntegrity = errors.New("integrity error")
)

// Error is a kind plus a human readable message and optional per-field details.
type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the kind so errors.Is matches the sentinel.
func (e *Error) Unwrap() error {
	return e.Kind
}

// WithField attaches a field detail and returns e.
func (e *Error) WithField(name, msg string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}

	e.Fields[name] = msg

	return e
}

func newf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds an ErrNotFound error.
func NotFound(format string, args ...any) *Error { return newf(ErrNotFound, format, args...) }

// Unauthenticated builds an ErrUnauthenticated error.
func Unauthenticated(format string, args ...any) *Error {
	return newf(ErrUnauthenticated, format, args...)
}

// Forbidden builds an ErrForbidden error.
func Forbidden(format string, args ...any) *Error { return newf(ErrForbidden, format, args...) }

// Conflict builds an ErrConflict error.
func Conflict(format string, args ...any) *Error { return newf(ErrConflict, format, args...) }

// Validation builds an ErrValidation error.
func Validation(format string, args ...any) *Error { return newf(ErrValidation, format, args...) }

// InsufficientCredits builds an ErrInsufficientCredits error.
func InsufficientCredits(format string, args ...any) *Error {
	return newf(ErrInsufficientCredits, format, args...)
}

// Integrity builds an ErrIntegrity error.
func Integrity(format string, args ...any) *Error { return newf(ErrIntegrity, format, args...) }

// FromDB translates gorm errors into kinds. what names the missing entity.
// Other errors are wrapped unchanged.
func FromDB(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Integrity("%s already exists", what)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// FromValidator turns validator failures into an ErrValidation error listing every
// failing field with the tag it failed. Other errors are returned as validation errors verbatim.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Validation("%s", err.Error())
	}

	out := Validation("invalid input")
	names := make([]string, 0, len(verrs))

	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}

		out.WithField(fe.Field(), msg)
		names = append(names, fe.Field())
	}

	out.Message = "invalid input: " + strings.Join(names, ", ")

	return out
}

// KindName returns a stable name for the kind of err, "internal" for unknown errors.
func KindName(err error) string {
	for _, k := range []struct {
		kind error
		name string
	}{
		{ErrNotFound, "not_found"},
		{ErrUnauthenticated, "unauthenticated"},
		{ErrForbidden, "forbidden"},
		{ErrConflict, "conflict"},
		{ErrValidation, "validation"},
		{ErrInsufficientCredits, "insufficient_credits"},
		{ErrIntegrity, "integrity"},
	} {
		if errors.Is(err, k.kind) {
			return k.name
		}
	}

	return "internal"
}
