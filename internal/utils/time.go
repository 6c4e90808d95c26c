package utils

import (
	"fmt"
	"time"
)

// ParseDate accepts either a calendar date ("2006-01-02", read as UTC
// midnight) or a full RFC3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, value)
}

func FormatTimeISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// DayCount is the rental length in days. Partial days are kept, so a
// 36-hour rental is 1.5 days.
func DayCount(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

// ValidateBookingRange enforces the minimum rental length.
func ValidateBookingRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if end.Sub(start) < MinBookingDuration {
		return ErrInvalidDateRange
	}
	return nil
}
