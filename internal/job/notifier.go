package job

import (
	"context"
	"log/slog"

	"tasktracker/internal/domain"
)

// LogSink is the default notification sink: it records the notification in
// the structured log. Real delivery transports (web push, chat alerts) plug
// in behind the Sink interface.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With(slog.String("component", "notification_sink"))}
}

// Ensure LogSink implements Sink
var _ Sink = (*LogSink)(nil)

// Deliver implements Sink by logging the reminder notification.
func (s *LogSink) Deliver(ctx context.Context, reminder *domain.Reminder, task *domain.Task, owner *domain.User) error {
	s.logger.Info("reminder notification",
		slog.String("reminder_id", reminder.ID.String()),
		slog.String("task_id", task.ID.String()),
		slog.String("task_title", task.Title),
		slog.String("owner_email", owner.Email),
		slog.Time("remind_at", reminder.RemindAt))
	return nil
}
