package api

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"tasktracker/internal/api/shared"
	"tasktracker/internal/job"
	"tasktracker/internal/platform/logger"
)

// cronSecretHeader carries the shared secret authorizing external job
// triggers.
const cronSecretHeader = "X-Cron-Secret"

// JobHandler exposes the background jobs for external triggering. The
// endpoints share the runner's single-flight guard with the internal
// scheduler, so an externally triggered run can never overlap a timer run
// of the same job type.
type JobHandler struct {
	runner     *job.Runner
	cronSecret string
	logger     *slog.Logger
}

// NewJobHandler creates a new JobHandler with the given dependencies.
func NewJobHandler(runner *job.Runner, cronSecret string, logger *slog.Logger) *JobHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobHandler{
		runner:     runner,
		cronSecret: cronSecret,
		logger:     logger.With(slog.String("component", "job_handler")),
	}
}

// RunRecurrence handles POST /api/jobs/recurring-tasks.
func (h *JobHandler) RunRecurrence(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	result, err := h.runner.RunRecurrenceNow(r.Context())
	if err != nil {
		h.respondRunError(w, r, job.NameRecurrence, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, JobStatusResponse{
		Job:    string(job.NameRecurrence),
		Result: result,
	})
}

// RunReminders handles POST /api/jobs/reminder-dispatcher.
func (h *JobHandler) RunReminders(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	result, err := h.runner.RunRemindersNow(r.Context())
	if err != nil {
		h.respondRunError(w, r, job.NameReminders, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, JobStatusResponse{
		Job:    string(job.NameReminders),
		Result: result,
	})
}

// authorize checks the cron secret header with a constant-time compare.
func (h *JobHandler) authorize(w http.ResponseWriter, r *http.Request) bool {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if h.cronSecret == "" {
		log.Error("cron secret not configured, rejecting job trigger")
		shared.RespondWithError(w, r, http.StatusForbidden, "Job triggers disabled")
		return false
	}

	provided := r.Header.Get(cronSecretHeader)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.cronSecret)) != 1 {
		log.Warn("job trigger with invalid cron secret",
			slog.String("remote_addr", r.RemoteAddr))
		shared.RespondWithError(w, r, http.StatusForbidden, "Invalid cron secret")
		return false
	}

	return true
}

// respondRunError distinguishes an in-flight conflict from a failed run.
func (h *JobHandler) respondRunError(w http.ResponseWriter, r *http.Request, name job.Name, err error) {
	if errors.Is(err, job.ErrAlreadyRunning) {
		shared.RespondWithError(w, r, http.StatusConflict, "Job already running")
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Error("externally triggered job run failed",
		slog.String("job", string(name)),
		slog.String("error", err.Error()))
	shared.RespondWithError(w, r, http.StatusInternalServerError, "Job run failed")
}
