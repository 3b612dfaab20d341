package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/domain"
)

// date builds a UTC timestamp at noon so clock carry-over is visible.
func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		reference time.Time
		typ       domain.RecurrenceType
		interval  int
		expected  time.Time
	}{
		{
			name:      "daily interval 1",
			reference: date(2025, time.January, 1),
			typ:       domain.RecurrenceDaily,
			interval:  1,
			expected:  date(2025, time.January, 2),
		},
		{
			name:      "daily interval 10 crosses month boundary",
			reference: date(2025, time.January, 25),
			typ:       domain.RecurrenceDaily,
			interval:  10,
			expected:  date(2025, time.February, 4),
		},
		{
			name:      "weekly interval 1",
			reference: date(2025, time.January, 1),
			typ:       domain.RecurrenceWeekly,
			interval:  1,
			expected:  date(2025, time.January, 8),
		},
		{
			name:      "weekly interval 2",
			reference: date(2025, time.January, 1),
			typ:       domain.RecurrenceWeekly,
			interval:  2,
			expected:  date(2025, time.January, 15),
		},
		{
			name:      "monthly mid-month",
			reference: date(2025, time.March, 15),
			typ:       domain.RecurrenceMonthly,
			interval:  1,
			expected:  date(2025, time.April, 15),
		},
		{
			name:      "monthly Jan 31 clamps to Feb 28",
			reference: date(2025, time.January, 31),
			typ:       domain.RecurrenceMonthly,
			interval:  1,
			expected:  date(2025, time.February, 28),
		},
		{
			name:      "monthly Jan 31 clamps to Feb 29 in leap year",
			reference: date(2024, time.January, 31),
			typ:       domain.RecurrenceMonthly,
			interval:  1,
			expected:  date(2024, time.February, 29),
		},
		{
			name:      "monthly Mar 31 clamps to Apr 30",
			reference: date(2025, time.March, 31),
			typ:       domain.RecurrenceMonthly,
			interval:  1,
			expected:  date(2025, time.April, 30),
		},
		{
			name:      "monthly interval 3 from Nov 30 crosses year",
			reference: date(2025, time.November, 30),
			typ:       domain.RecurrenceMonthly,
			interval:  3,
			expected:  date(2026, time.February, 28),
		},
		{
			name:      "monthly interval 12 keeps day through leap February",
			reference: date(2024, time.February, 29),
			typ:       domain.RecurrenceMonthly,
			interval:  12,
			expected:  date(2025, time.February, 28),
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			next, err := NextDueDate(tc.reference, tc.typ, tc.interval)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, next)
		})
	}
}

func TestNextDueDatePreservesClock(t *testing.T) {
	t.Parallel()

	reference := time.Date(2025, time.January, 31, 9, 30, 15, 0, time.UTC)
	next, err := NextDueDate(reference, domain.RecurrenceMonthly, 1)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.February, 28, 9, 30, 15, 0, time.UTC), next)
}

func TestNextDueDateRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	ref := date(2025, time.January, 1)

	_, err := NextDueDate(ref, domain.RecurrenceDaily, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRecurrenceConfig)

	_, err = NextDueDate(ref, domain.RecurrenceDaily, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidRecurrenceConfig)

	_, err = NextDueDate(ref, domain.RecurrenceType("yearly"), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidRecurrenceType)
}
