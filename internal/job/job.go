package job

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tasktracker/internal/domain"
)

// Name identifies a background job type.
type Name string

// The two job types driven by the runner.
const (
	NameRecurrence Name = "recurring-tasks"
	NameReminders  Name = "reminder-dispatcher"
)

// State is the lifecycle state of a job type.
type State string

// Possible job states. A job is IDLE between ticks, RUNNING during a scan,
// and FAILED transiently when the scan itself (not an individual row)
// errored; it returns to IDLE to await the next tick.
const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateFailed  State = "failed"
)

// NextDueFunc computes the successor due date for a locked candidate task.
// It is invoked by the task gateway inside the candidate's unit of work,
// after the regeneration predicate has been re-verified under the lock.
type NextDueFunc func(task *domain.Task) (time.Time, error)

// DeliverFunc delivers the notification for a locked due reminder.
// The gateway flips the reminder's sent flag only if this returns nil.
type DeliverFunc func(ctx context.Context, reminder *domain.Reminder, task *domain.Task, owner *domain.User) error

// TaskGateway is the narrow transactional surface the recurrence processor
// needs from the persistence engine.
type TaskGateway interface {
	// ListRecurrenceCandidates returns the IDs of tasks matching the
	// regeneration predicate: recurring, completed, carrying a due date,
	// and not yet processed for their latest completion. Order is stable
	// but not semantically significant.
	ListRecurrenceCandidates(ctx context.Context) ([]uuid.UUID, error)

	// RegenerateTask executes one atomic unit of work for a candidate:
	// lock the row, re-check the regeneration predicate, compute the
	// successor due date via nextDue, insert the successor (tags included),
	// and stamp the original's last_processed_at with now. The whole unit
	// commits or rolls back together.
	//
	// Returns (true, nil) if a successor was created, (false, nil) if the
	// predicate no longer held under the lock (claimed by a concurrent run
	// or reopened by the user), and (false, err) on failure.
	RegenerateTask(ctx context.Context, id uuid.UUID, now time.Time, nextDue NextDueFunc) (bool, error)
}

// ReminderGateway is the narrow transactional surface the reminder
// dispatcher needs from the persistence engine.
type ReminderGateway interface {
	// ListDueReminders returns the IDs of reminders with sent=false and
	// remind_at <= now.
	ListDueReminders(ctx context.Context, now time.Time) ([]uuid.UUID, error)

	// DispatchReminder executes one atomic unit of work for a due
	// reminder: lock the row, re-check that it is still unsent and due,
	// invoke deliver, and mark the reminder sent only after deliver
	// returns nil. A deliver failure rolls the unit back with the
	// reminder still unsent.
	//
	// Returns (true, nil) if the reminder was delivered and marked sent,
	// (false, nil) if it was already claimed, and (false, err) on failure.
	DispatchReminder(ctx context.Context, id uuid.UUID, now time.Time, deliver DeliverFunc) (bool, error)
}

// Sink is the external notification delivery capability. Implementations
// (web push, chat alerts) are out of scope; the default sink logs the
// notification.
type Sink interface {
	Deliver(ctx context.Context, reminder *domain.Reminder, task *domain.Task, owner *domain.User) error
}

// RecurrenceResult summarizes one recurrence processor run.
type RecurrenceResult struct {
	// Regenerated counts candidates that produced a successor.
	Regenerated int `json:"regenerated"`

	// Skipped counts candidates whose predicate no longer held under the
	// row lock. Contention skips are not errors.
	Skipped int `json:"skipped"`

	// Failed lists candidates whose unit of work errored; they are
	// retried on the next scheduled run.
	Failed []uuid.UUID `json:"failed,omitempty"`
}

// ReminderResult summarizes one reminder dispatcher run.
type ReminderResult struct {
	// Dispatched counts reminders delivered and marked sent.
	Dispatched int `json:"dispatched"`

	// Skipped counts reminders already claimed by a concurrent run.
	Skipped int `json:"skipped"`

	// Failed lists reminders whose delivery or unit of work errored; they
	// remain unsent and are retried on the next run.
	Failed []uuid.UUID `json:"failed,omitempty"`
}
