package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tasktracker/internal/domain"
	"tasktracker/internal/platform/logger"
	"tasktracker/internal/store"
)

// reminderColumns is the canonical column list for reminder queries.
const reminderColumns = `id, task_id, remind_at, sent, created_at`

// PostgresReminderStore implements the store.ReminderStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReminderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReminderStore creates a new PostgreSQL implementation of the
// ReminderStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresReminderStore(db store.DBTX, logger *slog.Logger) *PostgresReminderStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReminderStore{
		db:     db,
		logger: logger.With(slog.String("component", "reminder_store")),
	}
}

// Ensure PostgresReminderStore implements store.ReminderStore interface
var _ store.ReminderStore = (*PostgresReminderStore)(nil)

// Create implements store.ReminderStore.Create
// Returns store.ErrInvalidEntity if the task does not exist.
func (s *PostgresReminderStore) Create(ctx context.Context, reminder *domain.Reminder) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := reminder.Validate(); err != nil {
		log.Warn("reminder validation failed during create",
			slog.String("error", err.Error()),
			slog.String("reminder_id", reminder.ID.String()))
		return err
	}

	query := `
		INSERT INTO reminders (` + reminderColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		reminder.ID,
		reminder.TaskID,
		reminder.RemindAt,
		reminder.Sent,
		reminder.CreatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during reminder creation",
				slog.String("reminder_id", reminder.ID.String()),
				slog.String("task_id", reminder.TaskID.String()))
			return fmt.Errorf("%w: task with ID %s not found",
				store.ErrInvalidEntity, reminder.TaskID)
		}

		log.Error("failed to create reminder",
			slog.String("error", err.Error()),
			slog.String("reminder_id", reminder.ID.String()))
		return MapError(err)
	}

	log.Info("reminder created successfully",
		slog.String("reminder_id", reminder.ID.String()),
		slog.String("task_id", reminder.TaskID.String()),
		slog.Time("remind_at", reminder.RemindAt))
	return nil
}

// ListByTask implements store.ReminderStore.ListByTask
// Returns an empty slice if the task carries no reminders.
func (s *PostgresReminderStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE task_id = $1
		ORDER BY remind_at
	`
	return s.queryReminders(ctx, query, taskID)
}

// ListPendingByOwner implements store.ReminderStore.ListPendingByOwner
// It returns the owner's unsent due reminders across all of their tasks.
func (s *PostgresReminderStore) ListPendingByOwner(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]*domain.Reminder, error) {
	query := `
		SELECT r.id, r.task_id, r.remind_at, r.sent, r.created_at
		FROM reminders r
		JOIN tasks t ON t.id = r.task_id
		WHERE t.owner_id = $1 AND r.sent = FALSE AND r.remind_at <= $2
		ORDER BY r.remind_at
	`
	return s.queryReminders(ctx, query, ownerID, now)
}

// WithTx implements store.ReminderStore.WithTx
// It returns a new ReminderStore instance that uses the provided transaction.
func (s *PostgresReminderStore) WithTx(tx *sql.Tx) store.ReminderStore {
	return &PostgresReminderStore{
		db:     tx,
		logger: s.logger,
	}
}

// queryReminders runs a reminder query and scans the result set.
func (s *PostgresReminderStore) queryReminders(ctx context.Context, query string, args ...interface{}) ([]*domain.Reminder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query reminders",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	reminders := []*domain.Reminder{}
	for rows.Next() {
		var reminder domain.Reminder
		err := rows.Scan(
			&reminder.ID,
			&reminder.TaskID,
			&reminder.RemindAt,
			&reminder.Sent,
			&reminder.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan reminder row", slog.String("error", err.Error()))
			return nil, err
		}
		reminders = append(reminders, &reminder)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return reminders, nil
}
