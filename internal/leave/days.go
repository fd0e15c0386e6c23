package leave

import (
	"strings"
	"time"

	"github.com/univhr/hrcore/internal/apperr"
)

// DateLayout is the wire format of leave dates.
const DateLayout = "2006-01-02"

// dateTimeLayout is accepted as well, the time part is dropped.
const dateTimeLayout = "2006-01-02T15:04:05"

// BusinessDays counts the days from start to end inclusive, Monday to Saturday.
// Sundays are not counted. It returns 0 when end is before start.
func BusinessDays(start, end time.Time) int {
	start, end = Date(start), Date(end)

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Sunday {
			days++
		}
	}

	return days
}

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a leave date given as YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range []string{DateLayout, dateTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return Date(t), nil
		}
	}

	return time.Time{}, apperr.Validation("Invalid %s format. Use YYYY-MM-DD.", field).WithField(field, "date")
}
