package models

import (
	"strings"
	"time"
)

// dayLayout is the calendar-date format used throughout. Days are stored and
// compared as plain YYYY-MM-DD strings, never as timestamps, so no timezone
// can shift them.
const dayLayout = "2006-01-02"

// parseDay parses a YYYY-MM-DD calendar date.
func parseDay(s string) (time.Time, error) {
	return time.Parse(dayLayout, s)
}

// addDays returns the calendar date n days after day. The input must already
// be validated.
func addDays(day string, n int) string {
	t, err := time.Parse(dayLayout, day)
	if err != nil {
		return day
	}
	return t.AddDate(0, 0, n).Format(dayLayout)
}

// daysBetween returns the number of calendar days from a to b (negative when
// b precedes a). Inputs must already be validated.
func daysBetween(a, b string) int {
	ta, err := time.Parse(dayLayout, a)
	if err != nil {
		return 0
	}
	tb, err := time.Parse(dayLayout, b)
	if err != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// dayInRange reports whether day falls within [start, end]. Lexicographic
// comparison is correct for YYYY-MM-DD strings.
func dayInRange(day, start, end string) bool {
	return day >= start && day <= end
}

// isUniqueViolation checks if a SQLite error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed: UNIQUE"))
}
