package utils

import (
	"errors"
	"time"
)

// ErrPastDate is returned for dates that are not strictly after today.
var ErrPastDate = errors.New("date must be in the future")

// ValidateFutureDate checks that d falls strictly after the current
// calendar date. Comparison is date-granular: booking for later today
// still fails.
func ValidateFutureDate(d time.Time, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if !day.After(today) {
		return ErrPastDate
	}
	return nil
}
