package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind error
		key  string
	}{
		{"not found", NotFound("employee %d not found", 7), ErrNotFound, "not_found"},
		{"unauthenticated", Unauthenticated("Authentication required"), ErrUnauthenticated, "unauthenticated"},
		{"forbidden", Forbidden("no"), ErrForbidden, "forbidden"},
		{"conflict", Conflict("Cannot approve request with status: %s", "Approved"), ErrConflict, "conflict"},
		{"validation", Validation("bad"), ErrValidation, "validation"},
		{"insufficient", InsufficientCredits("Insufficient leave credits"), ErrInsufficientCredits, "insufficient_credits"},
		{"integrity", Integrity("dup"), ErrIntegrity, "integrity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)

			require.ErrorIs(t, wrapped, tt.kind)
			assert.Equal(t, tt.key, KindName(wrapped))

			var target *Error
			require.ErrorAs(t, wrapped, &target)
			assert.Equal(t, tt.err.Message, target.Message)
		})
	}

	assert.Equal(t, "Cannot approve request with status: Approved",
		Conflict("Cannot approve request with status: %s", "Approved").Error())
	assert.Equal(t, "internal", KindName(errors.New("boom")))
}

func TestWithField(t *testing.T) {
	err := Validation("invalid").WithField("days_requested", "does not match")

	assert.Equal(t, map[string]string{"days_requested": "does not match"}, err.Fields)
}

func TestFromDB(t *testing.T) {
	require.NoError(t, FromDB(nil, "role"))

	err := FromDB(gorm.ErrRecordNotFound, "role")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "role not found", err.Error())

	require.ErrorIs(t, FromDB(gorm.ErrDuplicatedKey, "role assignment"), ErrIntegrity)

	other := errors.New("disk full")
	err = FromDB(other, "role")
	require.ErrorIs(t, err, other)
	assert.Equal(t, "internal", KindName(err))
}

func TestFromValidator(t *testing.T) {
	type input struct {
		Code  string `validate:"required"`
		Level int    `validate:"min=-1,max=99"`
	}

	err := FromValidator(validator.New().Struct(input{Level: 120}))
	require.ErrorIs(t, err, ErrValidation)

	var appErr *Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "required", appErr.Fields["Code"])
	assert.Equal(t, "max=99", appErr.Fields["Level"])
	assert.Equal(t, "invalid input: Code, Level", appErr.Message)

	require.NoError(t, FromValidator(nil))
	require.ErrorIs(t, FromValidator(errors.New("plain")), ErrValidation)
}
