package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"tasktracker/internal/domain"
)

// ReminderStore defines the interface for reminder data persistence.
type ReminderStore interface {
	// Create saves a new reminder to the store.
	Create(ctx context.Context, reminder *domain.Reminder) error

	// ListByTask returns all reminders for the given task.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Reminder, error)

	// ListPendingByOwner returns the owner's unsent reminders that are due
	// at the given time, across all of their tasks.
	ListPendingByOwner(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]*domain.Reminder, error)

	// WithTx returns a new ReminderStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ReminderStore
}
