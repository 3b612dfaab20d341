package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority represents the urgency level of a task.
type Priority string

// Possible task priority values
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// RecurrenceType represents the unit a recurring task repeats on.
type RecurrenceType string

// Possible recurrence type values
const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID             = errors.New("task ID cannot be empty")
	ErrEmptyTaskOwnerID        = errors.New("task owner ID cannot be empty")
	ErrEmptyTaskTitle          = errors.New("task title cannot be empty")
	ErrInvalidPriority         = errors.New("invalid task priority")
	ErrInvalidRecurrenceType   = errors.New("recurrence type must be daily, weekly or monthly")
	ErrInvalidRecurrenceConfig = errors.New("recurrence interval must be at least 1")
)

// Task represents a single unit of work owned by a user. A task may carry a
// recurrence configuration, in which case completing it makes it a candidate
// for successor regeneration by the background recurrence processor.
type Task struct {
	ID                 uuid.UUID      `json:"id"`
	OwnerID            uuid.UUID      `json:"owner_id"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	Completed          bool           `json:"completed"`
	DueDate            *time.Time     `json:"due_date,omitempty"`
	Priority           Priority       `json:"priority"`
	IsRecurring        bool           `json:"is_recurring"`
	RecurrenceType     RecurrenceType `json:"recurrence_type,omitempty"`
	RecurrenceInterval int            `json:"recurrence_interval,omitempty"`
	LastProcessedAt    *time.Time     `json:"last_processed_at,omitempty"`
	Tags               []*Tag         `json:"tags,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user.
// It generates a new UUID for the task ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewTask(ownerID uuid.UUID, title, description string, dueDate *time.Time, priority Priority) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(title),
		Description: description,
		DueDate:     dueDate,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.OwnerID == uuid.Nil {
		return ErrEmptyTaskOwnerID
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTaskTitle
	}

	if !isValidPriority(t.Priority) {
		return ErrInvalidPriority
	}

	if t.IsRecurring {
		if !isValidRecurrenceType(t.RecurrenceType) {
			return ErrInvalidRecurrenceType
		}
		if t.RecurrenceInterval < 1 {
			return ErrInvalidRecurrenceConfig
		}
	}

	return nil
}

// SetRecurrence configures the task to recur with the given type and interval.
// Interval values below 1 are rejected here, at configuration time, so the
// recurrence evaluator never sees them.
func (t *Task) SetRecurrence(typ RecurrenceType, interval int) error {
	if !isValidRecurrenceType(typ) {
		return ErrInvalidRecurrenceType
	}
	if interval < 1 {
		return ErrInvalidRecurrenceConfig
	}

	t.IsRecurring = true
	t.RecurrenceType = typ
	t.RecurrenceInterval = interval
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// ClearRecurrence removes the task's recurrence configuration.
func (t *Task) ClearRecurrence() {
	t.IsRecurring = false
	t.RecurrenceType = ""
	t.RecurrenceInterval = 0
	t.UpdatedAt = time.Now().UTC()
}

// RegenerationDue reports whether this task is a candidate for successor
// regeneration: a completed recurring task with a due date whose most recent
// completion (UpdatedAt advancing) happened after the last processing pass.
// This is the idempotency guard: once LastProcessedAt catches up with
// UpdatedAt the same completion is never processed twice.
func (t *Task) RegenerationDue() bool {
	if !t.IsRecurring || !t.Completed || t.DueDate == nil {
		return false
	}
	return t.LastProcessedAt == nil || t.LastProcessedAt.Before(t.UpdatedAt)
}

// Successor builds the next instance of a recurring task, due at nextDue.
// The successor copies the owner, title, description, priority and recurrence
// configuration of the original; tags are copied by the store within the same
// unit of work. The successor starts uncompleted and unprocessed.
func (t *Task) Successor(nextDue time.Time) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:                 uuid.New(),
		OwnerID:            t.OwnerID,
		Title:              t.Title,
		Description:        t.Description,
		Completed:          false,
		DueDate:            &nextDue,
		Priority:           t.Priority,
		IsRecurring:        t.IsRecurring,
		RecurrenceType:     t.RecurrenceType,
		RecurrenceInterval: t.RecurrenceInterval,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// isValidPriority checks if the given priority is a valid Priority.
func isValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// isValidRecurrenceType checks if the given type is a valid RecurrenceType.
func isValidRecurrenceType(rt RecurrenceType) bool {
	switch rt {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// ParsePriority converts a string into a Priority.
// Returns ErrInvalidPriority for unknown values.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(s))
	if !isValidPriority(p) {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// ParseRecurrenceType converts a string into a RecurrenceType.
// Returns ErrInvalidRecurrenceType for unknown values.
func ParseRecurrenceType(s string) (RecurrenceType, error) {
	rt := RecurrenceType(strings.ToLower(s))
	if !isValidRecurrenceType(rt) {
		return "", ErrInvalidRecurrenceType
	}
	return rt, nil
}
