package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReminder(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	remindAt := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))

	reminder, err := NewReminder(taskID, remindAt)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, reminder.ID)
	assert.Equal(t, taskID, reminder.TaskID)
	assert.False(t, reminder.Sent)
	// RemindAt is normalized to UTC.
	assert.Equal(t, time.UTC, reminder.RemindAt.Location())
	assert.True(t, reminder.RemindAt.Equal(remindAt))

	_, err = NewReminder(uuid.Nil, remindAt)
	assert.ErrorIs(t, err, ErrEmptyReminderTaskID)

	_, err = NewReminder(taskID, time.Time{})
	assert.ErrorIs(t, err, ErrZeroRemindAt)
}

func TestReminderDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		remindAt time.Time
		sent     bool
		expected bool
	}{
		{"past and unsent", now.Add(-time.Hour), false, true},
		{"exactly now and unsent", now, false, true},
		{"future", now.Add(time.Hour), false, false},
		{"past but already sent", now.Add(-time.Hour), true, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			reminder := &Reminder{
				ID:       uuid.New(),
				TaskID:   uuid.New(),
				RemindAt: tc.remindAt,
				Sent:     tc.sent,
			}
			assert.Equal(t, tc.expected, reminder.Due(now))
		})
	}
}
