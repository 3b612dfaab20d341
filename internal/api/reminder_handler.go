package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"tasktracker/internal/api/shared"
	"tasktracker/internal/domain"
	"tasktracker/internal/store"
)

// ReminderHandler handles reminder-related API requests.
type ReminderHandler struct {
	reminderStore store.ReminderStore
	taskStore     store.TaskStore
	validator     *validator.Validate
	logger        *slog.Logger
}

// NewReminderHandler creates a new ReminderHandler with the given
// dependencies.
func NewReminderHandler(reminderStore store.ReminderStore, taskStore store.TaskStore, logger *slog.Logger) *ReminderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderHandler{
		reminderStore: reminderStore,
		taskStore:     taskStore,
		validator:     validator.New(),
		logger:        logger.With(slog.String("component", "reminder_handler")),
	}
}

// Create handles POST /api/tasks/{id}/reminders. Past remind_at values are
// accepted; the dispatcher picks them up on its next tick.
func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req CreateReminderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	// Ownership check; a foreign task reads as not found.
	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	reminder, err := domain.NewReminder(task.ID, req.RemindAt)
	if err != nil {
		HandleAPIError(w, r, err, "Invalid reminder data")
		return
	}

	if err := h.reminderStore.Create(r.Context(), reminder); err != nil {
		HandleAPIError(w, r, err, "Failed to create reminder")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, reminder)
}

// ListByTask handles GET /api/tasks/{id}/reminders.
func (h *ReminderHandler) ListByTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	reminders, err := h.reminderStore.ListByTask(r.Context(), task.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list reminders")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, reminders)
}

// ListPending handles GET /api/reminders/pending. It returns the caller's
// unsent reminders whose remind_at has passed.
func (h *ReminderHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	reminders, err := h.reminderStore.ListPendingByOwner(r.Context(), userID, time.Now().UTC())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list pending reminders")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, reminders)
}
