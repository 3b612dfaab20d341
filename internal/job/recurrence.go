package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tasktracker/internal/domain"
	"tasktracker/internal/domain/recurrence"
)

// RecurrenceProcessor scans completed recurring tasks and spawns their
// successor instances. Each candidate is handled in its own atomic unit of
// work so one contended or malformed row never blocks the rest of the scan.
type RecurrenceProcessor struct {
	tasks      TaskGateway
	rowTimeout time.Duration
	logger     *slog.Logger
}

// NewRecurrenceProcessor creates a RecurrenceProcessor. rowTimeout bounds
// each per-candidate unit of work; on timeout the transaction is released
// and the candidate is retried on the next run.
func NewRecurrenceProcessor(tasks TaskGateway, rowTimeout time.Duration, logger *slog.Logger) *RecurrenceProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecurrenceProcessor{
		tasks:      tasks,
		rowTimeout: rowTimeout,
		logger:     logger.With(slog.String("job", string(NameRecurrence))),
	}
}

// Run executes one processor pass at the given time. The outer scan error
// (store unavailable) aborts the whole run; per-candidate failures are
// collected in the result and retried next tick.
func (p *RecurrenceProcessor) Run(ctx context.Context, now time.Time) (RecurrenceResult, error) {
	var res RecurrenceResult

	candidates, err := p.tasks.ListRecurrenceCandidates(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to scan recurrence candidates: %w", err)
	}

	for _, id := range candidates {
		rowCtx, cancel := context.WithTimeout(ctx, p.rowTimeout)
		regenerated, err := p.tasks.RegenerateTask(rowCtx, id, now, p.nextDueDate)
		cancel()

		switch {
		case err != nil:
			p.logger.Warn("failed to regenerate task, will retry next run",
				slog.String("task_id", id.String()),
				slog.String("error", err.Error()))
			res.Failed = append(res.Failed, id)
		case regenerated:
			res.Regenerated++
		default:
			// Predicate no longer held under the lock.
			res.Skipped++
		}
	}

	p.logger.Info("recurrence run finished",
		slog.Int("candidates", len(candidates)),
		slog.Int("regenerated", res.Regenerated),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", len(res.Failed)))
	return res, nil
}

// nextDueDate evaluates the recurrence rule for a locked candidate. The
// selection predicate only admits tasks with a due date, so a nil due date
// here means the scan and the lock re-check disagree; treat it as a row
// failure rather than guessing a reference date.
func (p *RecurrenceProcessor) nextDueDate(task *domain.Task) (time.Time, error) {
	if task.DueDate == nil {
		return time.Time{}, fmt.Errorf("recurrence candidate %s has no due date", task.ID)
	}
	return recurrence.NextDueDate(*task.DueDate, task.RecurrenceType, task.RecurrenceInterval)
}
