package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ReminderDispatcher scans due, unsent reminders and delivers them through
// the notification sink. A reminder is only marked sent after the sink
// confirms delivery; sink failures leave it unsent for retry, never the
// reverse.
type ReminderDispatcher struct {
	reminders  ReminderGateway
	sink       Sink
	rowTimeout time.Duration
	logger     *slog.Logger
}

// NewReminderDispatcher creates a ReminderDispatcher.
func NewReminderDispatcher(reminders ReminderGateway, sink Sink, rowTimeout time.Duration, logger *slog.Logger) *ReminderDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderDispatcher{
		reminders:  reminders,
		sink:       sink,
		rowTimeout: rowTimeout,
		logger:     logger.With(slog.String("job", string(NameReminders))),
	}
}

// Run executes one dispatcher pass at the given time.
func (d *ReminderDispatcher) Run(ctx context.Context, now time.Time) (ReminderResult, error) {
	var res ReminderResult

	due, err := d.reminders.ListDueReminders(ctx, now)
	if err != nil {
		return res, fmt.Errorf("failed to scan due reminders: %w", err)
	}

	for _, id := range due {
		rowCtx, cancel := context.WithTimeout(ctx, d.rowTimeout)
		dispatched, err := d.reminders.DispatchReminder(rowCtx, id, now, d.sink.Deliver)
		cancel()

		switch {
		case err != nil:
			d.logger.Warn("failed to dispatch reminder, will retry next run",
				slog.String("reminder_id", id.String()),
				slog.String("error", err.Error()))
			res.Failed = append(res.Failed, id)
		case dispatched:
			res.Dispatched++
		default:
			res.Skipped++
		}
	}

	d.logger.Info("reminder run finished",
		slog.Int("due", len(due)),
		slog.Int("dispatched", res.Dispatched),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", len(res.Failed)))
	return res, nil
}
