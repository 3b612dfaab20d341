package api

import (
	"time"

	"github.com/google/uuid"

	"tasktracker/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name"     validate:"omitempty,max=100"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// Token is the JWT token used for API authorization
	Token string `json:"token"`
}

// UserResponse defines the profile payload for the current-user endpoint.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTaskRequest defines the payload for task creation.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=500"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
}

// UpdateTaskRequest defines the payload for partial task updates.
// Nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,max=500"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Completed   *bool      `json:"completed"`
	DueDate     *time.Time `json:"due_date"`
	Priority    *string    `json:"priority"    validate:"omitempty,oneof=low medium high"`
}

// SetDueDateRequest defines the payload for the due-date endpoint.
// A null due_date clears the task's due date.
type SetDueDateRequest struct {
	DueDate *time.Time `json:"due_date"`
}

// SetRecurrenceRequest defines the payload for configuring task recurrence.
type SetRecurrenceRequest struct {
	Type     string `json:"type"     validate:"required,oneof=daily weekly monthly"`
	Interval int    `json:"interval" validate:"required,min=1"`
}

// CreateReminderRequest defines the payload for reminder creation.
// RemindAt may be in the past; past-due reminders dispatch on the next
// scheduler tick.
type CreateReminderRequest struct {
	RemindAt time.Time `json:"remind_at" validate:"required"`
}

// TaskListResponse wraps a task listing with its count.
type TaskListResponse struct {
	Tasks []*domain.Task `json:"tasks"`
	Count int            `json:"count"`
}

// JobStatusResponse reports the outcome of an externally triggered job run.
type JobStatusResponse struct {
	Job    string      `json:"job"`
	Result interface{} `json:"result"`
}
