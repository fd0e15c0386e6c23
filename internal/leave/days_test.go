package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univhr/hrcore/internal/apperr"
	"github.com/univhr/hrcore/internal/leave"
)

func day(s string) time.Time {
	t, err := time.Parse(leave.DateLayout, s)
	if err != nil {
		panic(err)
	}

	return t
}

func TestBusinessDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"single weekday", "2024-06-10", "2024-06-10", 1},
		{"monday to saturday", "2024-06-10", "2024-06-15", 6},
		{"monday to sunday", "2024-06-10", "2024-06-16", 6},
		{"sunday only", "2024-06-16", "2024-06-16", 0},
		{"saturday to monday", "2024-06-15", "2024-06-17", 2},
		{"monday to following monday", "2025-03-03", "2025-03-10", 7},
		{"two weeks", "2024-06-10", "2024-06-22", 12},
		{"end before start", "2024-06-12", "2024-06-10", 0},
		{"across year end", "2024-12-30", "2025-01-04", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, leave.BusinessDays(day(tt.start), day(tt.end)))
		})
	}
}

func TestBusinessDaysIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2024, time.June, 10, 23, 59, 0, 0, time.UTC)
	end := time.Date(2024, time.June, 11, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, 2, leave.BusinessDays(start, end))
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2025-03-03", "2025-03-03T17:30:00", "2025-03-03T17:30:00Z", " 2025-03-03 "} {
		got, err := leave.ParseDate("start_date", in)
		require.NoError(t, err, in)
		assert.Equal(t, day("2025-03-03"), got, in)
	}

	_, err := leave.ParseDate("start_date", "03/03/2025")
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.EqualError(t, err, "Invalid start_date format. Use YYYY-MM-DD.")
}
