// Package recurrence implements the pure date arithmetic for recurring
// tasks. It has no I/O and no dependency on the store; the background
// recurrence processor feeds it a reference date and a task's recurrence
// configuration and gets back the successor's due date.
package recurrence

import (
	"fmt"
	"time"

	"tasktracker/internal/domain"
)

// NextDueDate computes the due date of the next occurrence after reference.
//
//   - daily: reference + interval days
//   - weekly: reference + interval*7 days
//   - monthly: reference advanced by interval calendar months, with the
//     day-of-month clamped to the last valid day of the target month
//     (Jan 31 + 1 month = Feb 28, or Feb 29 in a leap year)
//
// Interval must be >= 1. Out-of-range intervals and unknown recurrence types
// indicate a configuration that should have been rejected upstream, so they
// return an error rather than guessing.
func NextDueDate(reference time.Time, typ domain.RecurrenceType, interval int) (time.Time, error) {
	if interval < 1 {
		return time.Time{}, fmt.Errorf("%w: got %d", domain.ErrInvalidRecurrenceConfig, interval)
	}

	switch typ {
	case domain.RecurrenceDaily:
		return reference.AddDate(0, 0, interval), nil
	case domain.RecurrenceWeekly:
		return reference.AddDate(0, 0, interval*7), nil
	case domain.RecurrenceMonthly:
		return addMonthsClamped(reference, interval), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidRecurrenceType, typ)
	}
}

// addMonthsClamped advances t by the given number of calendar months,
// clamping the day-of-month to the last valid day of the target month.
// time.AddDate alone would normalize Jan 31 + 1 month into Mar 2/3, which is
// not what a "monthly" task means.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	firstOfTarget := time.Date(year, month, 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	if last := daysInMonth(firstOfTarget.Month(), firstOfTarget.Year()); day > last {
		day = last
	}

	hour, min, sec := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		hour, min, sec, t.Nanosecond(), t.Location())
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(month time.Month, year int) int {
	// First of the next month, rolled back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
