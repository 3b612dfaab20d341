package job

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrAlreadyRunning is returned when a run is requested for a job type that
// is still executing its previous run. Timer ticks treat this as a silent
// skip; the external trigger endpoint surfaces it as a conflict.
var ErrAlreadyRunning = errors.New("job already running")

// RunnerConfig holds the schedule settings for the runner.
type RunnerConfig struct {
	// RecurrenceInterval is the tick interval of the recurrence processor.
	RecurrenceInterval time.Duration

	// ReminderInterval is the tick interval of the reminder dispatcher.
	ReminderInterval time.Duration
}

// Status is an observable snapshot of one job type.
type Status struct {
	State     State      `json:"state"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// Runner owns the timers and single-flight guards for both job types. It is
// constructed once at process start and passed by reference to whatever
// hosts it; there is no ambient global scheduler state.
//
// The two job types tick independently and may run concurrently with each
// other; only same-type overlap is forbidden. A tick that fires while the
// same job type is still RUNNING is skipped entirely, not queued.
type Runner struct {
	recurrence *RecurrenceProcessor
	reminders  *ReminderDispatcher
	cfg        RunnerConfig
	logger     *slog.Logger

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	status map[Name]*Status
}

// NewRunner creates a Runner for the two processors.
func NewRunner(recurrence *RecurrenceProcessor, reminders *ReminderDispatcher, cfg RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		recurrence: recurrence,
		reminders:  reminders,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "job_runner")),
		cron:       cron.New(),
		ctx:        ctx,
		cancel:     cancel,
		status: map[Name]*Status{
			NameRecurrence: {State: StateIdle},
			NameReminders:  {State: StateIdle},
		},
	}
}

// Start registers both jobs on their intervals and starts the scheduler.
func (r *Runner) Start() error {
	if _, err := r.cron.AddFunc(everySpec(r.cfg.RecurrenceInterval), r.recurrenceTick); err != nil {
		return err
	}
	if _, err := r.cron.AddFunc(everySpec(r.cfg.ReminderInterval), r.reminderTick); err != nil {
		return err
	}

	r.cron.Start()
	r.logger.Info("job runner started",
		slog.Duration("recurrence_interval", r.cfg.RecurrenceInterval),
		slog.Duration("reminder_interval", r.cfg.ReminderInterval))
	return nil
}

// Stop cancels in-flight runs and waits for scheduled jobs to finish.
func (r *Runner) Stop() {
	r.cancel()
	<-r.cron.Stop().Done()
	r.logger.Info("job runner stopped")
}

// Status returns the current snapshot of the named job type.
func (r *Runner) Status(name Name) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.status[name]; ok {
		return *s
	}
	return Status{}
}

// RunRecurrenceNow runs the recurrence processor immediately, sharing the
// single-flight guard with the timer path. Returns ErrAlreadyRunning if a
// run of this job type is in flight.
func (r *Runner) RunRecurrenceNow(ctx context.Context) (RecurrenceResult, error) {
	var res RecurrenceResult
	err := r.singleFlight(NameRecurrence, func() error {
		var runErr error
		res, runErr = r.recurrence.Run(ctx, time.Now().UTC())
		return runErr
	})
	return res, err
}

// RunRemindersNow runs the reminder dispatcher immediately, sharing the
// single-flight guard with the timer path.
func (r *Runner) RunRemindersNow(ctx context.Context) (ReminderResult, error) {
	var res ReminderResult
	err := r.singleFlight(NameReminders, func() error {
		var runErr error
		res, runErr = r.reminders.Run(ctx, time.Now().UTC())
		return runErr
	})
	return res, err
}

// recurrenceTick is the timer entry point for the recurrence job.
func (r *Runner) recurrenceTick() {
	if _, err := r.RunRecurrenceNow(r.ctx); err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			r.logger.Info("skipping tick, previous run still in flight",
				slog.String("job", string(NameRecurrence)))
			return
		}
		r.logger.Error("recurrence run failed",
			slog.String("error", err.Error()))
	}
}

// reminderTick is the timer entry point for the reminder job.
func (r *Runner) reminderTick() {
	if _, err := r.RunRemindersNow(r.ctx); err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			r.logger.Info("skipping tick, previous run still in flight",
				slog.String("job", string(NameReminders)))
			return
		}
		r.logger.Error("reminder run failed",
			slog.String("error", err.Error()))
	}
}

// singleFlight claims the named job, runs fn, and records the outcome. A
// job that cannot be claimed returns ErrAlreadyRunning without touching its
// status. A run whose outer scan fails is left in FAILED until the next
// tick claims it for a full retry.
func (r *Runner) singleFlight(name Name, fn func() error) error {
	if !r.claim(name) {
		return ErrAlreadyRunning
	}

	err := fn()
	r.release(name, err)
	return err
}

// claim attempts to move the named job from IDLE to RUNNING.
func (r *Runner) claim(name Name) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.status[name]
	if s.State == StateRunning {
		return false
	}
	s.State = StateRunning
	return true
}

// release records the run outcome and returns the job to IDLE.
func (r *Runner) release(name Name, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	s := r.status[name]
	s.LastRunAt = &now
	if err != nil {
		// FAILED does not block the next tick; claim treats it like IDLE.
		s.State = StateFailed
		s.LastError = err.Error()
		return
	}
	s.State = StateIdle
	s.LastError = ""
}

// everySpec renders an interval as a cron "@every" spec.
func everySpec(interval time.Duration) string {
	return "@every " + interval.String()
}
