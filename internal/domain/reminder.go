package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Reminder
var (
	ErrEmptyReminderID     = errors.New("reminder ID cannot be empty")
	ErrEmptyReminderTaskID = errors.New("reminder task ID cannot be empty")
	ErrZeroRemindAt        = errors.New("reminder time cannot be zero")
)

// Reminder is a scheduled notification tied to a task. It becomes due once
// RemindAt has passed and is dispatched by the background reminder job.
// Sent moves monotonically from false to true and is never reversed; a sent
// reminder is soft-consumed, never physically removed by the automation core.
type Reminder struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	RemindAt  time.Time `json:"remind_at"`
	Sent      bool      `json:"sent"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReminder creates a new Reminder for the given task.
// Returns an error if validation fails.
func NewReminder(taskID uuid.UUID, remindAt time.Time) (*Reminder, error) {
	reminder := &Reminder{
		ID:        uuid.New(),
		TaskID:    taskID,
		RemindAt:  remindAt.UTC(),
		Sent:      false,
		CreatedAt: time.Now().UTC(),
	}

	if err := reminder.Validate(); err != nil {
		return nil, err
	}

	return reminder, nil
}

// Validate checks if the Reminder has valid data.
func (r *Reminder) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyReminderID
	}

	if r.TaskID == uuid.Nil {
		return ErrEmptyReminderTaskID
	}

	if r.RemindAt.IsZero() {
		return ErrZeroRemindAt
	}

	return nil
}

// Due reports whether the reminder is eligible for dispatch at the given
// time: not yet sent and past its remind-at timestamp.
func (r *Reminder) Due(now time.Time) bool {
	return !r.Sent && !r.RemindAt.After(now)
}
