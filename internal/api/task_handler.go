package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"tasktracker/internal/api/shared"
	"tasktracker/internal/domain"
	"tasktracker/internal/platform/logger"
	"tasktracker/internal/store"
)

// TaskHandler handles task-related API requests: CRUD, search, filtering,
// sorting, due dates, recurrence configuration and tag assignment.
type TaskHandler struct {
	taskStore store.TaskStore
	tagStore  store.TagStore
	validator *validator.Validate
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskStore store.TaskStore, tagStore store.TagStore, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskStore: taskStore,
		tagStore:  tagStore,
		validator: validator.New(),
		logger:    logger.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := domain.NewTask(userID, req.Title, req.Description, req.DueDate, domain.Priority(req.Priority))
	if err != nil {
		HandleAPIError(w, r, err, "Invalid task data")
		return
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// List handles GET /api/tasks. Supports limit/offset pagination and the
// same optional narrowing parameters as the filter endpoint.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	filter, err := parseTaskFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.respondWithList(w, r, userID, filter)
}

// Search handles GET /api/tasks/search?q=. The query matches title or
// description case-insensitively.
func (h *TaskHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		HandleAPIError(w, r,
			domain.NewValidationError("q", "is required", domain.ErrValidation), "")
		return
	}

	filter, err := parseTaskFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	filter.Search = q

	h.respondWithList(w, r, userID, filter)
}

// Filter handles GET /api/tasks/filter with completed, priority, tag,
// due_before and due_after parameters.
func (h *TaskHandler) Filter(w http.ResponseWriter, r *http.Request) {
	// Same shape as List; kept as a distinct route for API compatibility.
	h.List(w, r)
}

// Sort handles GET /api/tasks/sort?by=&order=.
func (h *TaskHandler) Sort(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	filter, err := parseTaskFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	by := r.URL.Query().Get("by")
	switch by {
	case "due_date", "priority", "title", "created_at":
		filter.SortBy = by
	case "":
		filter.SortBy = "created_at"
	default:
		HandleAPIError(w, r,
			domain.NewValidationError("by", "must be one of due_date, priority, title, created_at", domain.ErrValidation), "")
		return
	}

	h.respondWithList(w, r, userID, filter)
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Update handles PUT /api/tasks/{id}. Only the fields present in the
// request are changed.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Priority != nil {
		priority, err := domain.ParsePriority(*req.Priority)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		task.Priority = priority
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.taskStore.Delete(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetDueDate handles POST /api/tasks/{id}/due-date. A null due_date clears
// the task's due date.
func (h *TaskHandler) SetDueDate(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req SetDueDateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	task.DueDate = req.DueDate

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// SetRecurrence handles POST /api/tasks/{id}/recurrence.
func (h *TaskHandler) SetRecurrence(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req SetRecurrenceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	typ, err := domain.ParseRecurrenceType(req.Type)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := task.SetRecurrence(typ, req.Interval); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// ClearRecurrence handles DELETE /api/tasks/{id}/recurrence.
func (h *TaskHandler) ClearRecurrence(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	task.ClearRecurrence()

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// AttachTag handles POST /api/tasks/{id}/tags/{name}. The tag is created
// on first use.
func (h *TaskHandler) AttachTag(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	name, err := getTagName(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// Ownership check before touching the tag tables.
	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	tag, err := h.tagStore.GetOrCreate(r.Context(), userID, name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create tag")
		return
	}

	if err := h.tagStore.Attach(r.Context(), task.ID, tag.ID); err != nil {
		HandleAPIError(w, r, err, "Failed to attach tag")
		return
	}

	tags, err := h.tagStore.ListByTask(r.Context(), task.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tags")
		return
	}
	task.Tags = tags

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DetachTag handles DELETE /api/tasks/{id}/tags/{name}.
func (h *TaskHandler) DetachTag(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	name, err := getTagName(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	tag, err := h.tagStore.GetByName(r.Context(), userID, name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get tag")
		return
	}

	if err := h.tagStore.Detach(r.Context(), task.ID, tag.ID); err != nil {
		HandleAPIError(w, r, err, "Failed to detach tag")
		return
	}

	tags, err := h.tagStore.ListByTask(r.Context(), task.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tags")
		return
	}
	task.Tags = tags

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// respondWithList runs the listing and writes the wrapped result.
func (h *TaskHandler) respondWithList(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID, filter store.TaskFilter) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	tasks, err := h.taskStore.List(r.Context(), ownerID, filter)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: tasks,
		Count: len(tasks),
	})
}

// getTagName extracts and validates the tag name path parameter.
func getTagName(r *http.Request) (string, error) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		return "", domain.NewValidationError("name", "is required", domain.ErrValidation)
	}
	if len(name) > 50 {
		return "", domain.NewValidationError("name", "must be at most 50 characters", domain.ErrValidation)
	}
	return name, nil
}

// parseTaskFilter builds a store.TaskFilter from the request's query
// parameters. Unknown values are rejected, absent ones ignored.
func parseTaskFilter(r *http.Request) (store.TaskFilter, error) {
	var filter store.TaskFilter
	q := r.URL.Query()

	if v := q.Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			return filter, domain.NewValidationError("completed", "must be true or false", domain.ErrValidation)
		}
		filter.Completed = &completed
	}

	if v := q.Get("priority"); v != "" {
		priority, err := domain.ParsePriority(v)
		if err != nil {
			return filter, domain.NewValidationError("priority", "must be low, medium or high", domain.ErrValidation)
		}
		filter.Priority = priority
	}

	filter.Tag = strings.TrimSpace(q.Get("tag"))

	if v := q.Get("due_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, domain.NewValidationError("due_before", "must be an RFC 3339 timestamp", domain.ErrValidation)
		}
		filter.DueBefore = &t
	}

	if v := q.Get("due_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, domain.NewValidationError("due_after", "must be an RFC 3339 timestamp", domain.ErrValidation)
		}
		filter.DueAfter = &t
	}

	switch order := q.Get("order"); order {
	case "", "desc":
		filter.Order = store.SortDesc
	case "asc":
		filter.Order = store.SortAsc
	default:
		return filter, domain.NewValidationError("order", "must be asc or desc", domain.ErrValidation)
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, domain.NewValidationError("limit", "must be a non-negative integer", domain.ErrValidation)
		}
		filter.Limit = limit
	}

	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, domain.NewValidationError("offset", "must be a non-negative integer", domain.ErrValidation)
		}
		filter.Offset = offset
	}

	return filter, nil
}
