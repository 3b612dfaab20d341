package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tasktracker/internal/domain"
	"tasktracker/internal/job"
	"tasktracker/internal/platform/logger"
	"tasktracker/internal/store"
)

// TaskJobGateway implements job.TaskGateway on PostgreSQL. Unlike the plain
// stores it owns its transactions: each candidate is processed in its own
// unit of work guarded by a row lock, so two concurrent runs never
// regenerate the same completion twice.
type TaskJobGateway struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTaskJobGateway creates a TaskJobGateway on the given connection pool.
// If logger is nil, a default logger will be used.
func NewTaskJobGateway(db *sql.DB, logger *slog.Logger) *TaskJobGateway {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TaskJobGateway{
		db:     db,
		logger: logger.With(slog.String("component", "task_job_gateway")),
	}
}

// Ensure TaskJobGateway implements job.TaskGateway
var _ job.TaskGateway = (*TaskJobGateway)(nil)

// ListRecurrenceCandidates implements job.TaskGateway.ListRecurrenceCandidates
// The predicate mirrors domain.Task.RegenerationDue; the scan is a cheap
// unlocked read and every hit is re-verified under its row lock before any
// write happens.
func (g *TaskJobGateway) ListRecurrenceCandidates(ctx context.Context) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	query := `
		SELECT id
		FROM tasks
		WHERE is_recurring = TRUE
			AND completed = TRUE
			AND due_date IS NOT NULL
			AND (last_processed_at IS NULL OR last_processed_at < updated_at)
		ORDER BY updated_at
	`

	rows, err := g.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to scan recurrence candidates",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	return scanIDs(rows)
}

// RegenerateTask implements job.TaskGateway.RegenerateTask
// Lock, re-check, compute, insert successor with tags, stamp
// last_processed_at; all in one transaction. The stamp deliberately leaves
// updated_at untouched so a later re-completion re-arms the predicate.
func (g *TaskJobGateway) RegenerateTask(
	ctx context.Context,
	id uuid.UUID,
	now time.Time,
	nextDue job.NextDueFunc,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	var regenerated bool
	err := store.RunInTransaction(ctx, g.db, func(ctx context.Context, tx *sql.Tx) error {
		task, err := lockTask(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Deleted since the scan.
				return nil
			}
			return err
		}

		if !task.RegenerationDue() {
			// Claimed by a concurrent run or reopened by the user.
			return nil
		}

		next, err := nextDue(task)
		if err != nil {
			return err
		}

		successor := task.Successor(next)
		taskStore := NewPostgresTaskStore(tx, g.logger)
		if err := taskStore.Create(ctx, successor); err != nil {
			return err
		}

		tagStore := NewPostgresTagStore(tx, g.logger)
		if err := tagStore.CopyLinks(ctx, task.ID, successor.ID); err != nil {
			return err
		}

		stamp := `UPDATE tasks SET last_processed_at = $1 WHERE id = $2`
		if _, err := tx.ExecContext(ctx, stamp, now, task.ID); err != nil {
			return MapError(err)
		}

		log.Info("recurring task regenerated",
			slog.String("task_id", task.ID.String()),
			slog.String("successor_id", successor.ID.String()),
			slog.Time("next_due", next))
		regenerated = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return regenerated, nil
}

// ReminderJobGateway implements job.ReminderGateway on PostgreSQL. Each due
// reminder is dispatched in its own transaction under a row lock; the sent
// flag only flips after the delivery callback succeeds.
type ReminderJobGateway struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewReminderJobGateway creates a ReminderJobGateway on the given connection
// pool.
// If logger is nil, a default logger will be used.
func NewReminderJobGateway(db *sql.DB, logger *slog.Logger) *ReminderJobGateway {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ReminderJobGateway{
		db:     db,
		logger: logger.With(slog.String("component", "reminder_job_gateway")),
	}
}

// Ensure ReminderJobGateway implements job.ReminderGateway
var _ job.ReminderGateway = (*ReminderJobGateway)(nil)

// ListDueReminders implements job.ReminderGateway.ListDueReminders
func (g *ReminderJobGateway) ListDueReminders(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	query := `
		SELECT id
		FROM reminders
		WHERE sent = FALSE AND remind_at <= $1
		ORDER BY remind_at
	`

	rows, err := g.db.QueryContext(ctx, query, now)
	if err != nil {
		log.Error("failed to scan due reminders",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	return scanIDs(rows)
}

// DispatchReminder implements job.ReminderGateway.DispatchReminder
// A delivery error rolls the transaction back with the reminder still
// unsent; a sent reminder whose delivery never happened cannot occur.
func (g *ReminderJobGateway) DispatchReminder(
	ctx context.Context,
	id uuid.UUID,
	now time.Time,
	deliver job.DeliverFunc,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	var dispatched bool
	err := store.RunInTransaction(ctx, g.db, func(ctx context.Context, tx *sql.Tx) error {
		reminder, err := lockReminder(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Deleted since the scan.
				return nil
			}
			return err
		}

		if !reminder.Due(now) {
			// Sent by a concurrent run.
			return nil
		}

		task, err := getTask(ctx, tx, reminder.TaskID)
		if err != nil {
			return err
		}

		userStore := NewPostgresUserStore(tx, g.logger)
		owner, err := userStore.GetByID(ctx, task.OwnerID)
		if err != nil {
			return err
		}

		if err := deliver(ctx, reminder, task, owner); err != nil {
			return err
		}

		mark := `UPDATE reminders SET sent = TRUE WHERE id = $1`
		if _, err := tx.ExecContext(ctx, mark, reminder.ID); err != nil {
			return MapError(err)
		}

		log.Info("reminder dispatched",
			slog.String("reminder_id", reminder.ID.String()),
			slog.String("task_id", task.ID.String()))
		dispatched = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return dispatched, nil
}

// lockTask reads a task row under FOR UPDATE within the transaction.
func lockTask(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1
		FOR UPDATE
	`
	return scanTask(tx.QueryRowContext(ctx, query, id))
}

// getTask reads a task row without owner scoping; the job layer acts across
// all users.
func getTask(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1
	`
	return scanTask(tx.QueryRowContext(ctx, query, id))
}

// lockReminder reads a reminder row under FOR UPDATE within the transaction.
func lockReminder(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE id = $1
		FOR UPDATE
	`

	var reminder domain.Reminder
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&reminder.ID,
		&reminder.TaskID,
		&reminder.RemindAt,
		&reminder.Sent,
		&reminder.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

// scanIDs collects a single-column UUID result set.
func scanIDs(rows *sql.Rows) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
