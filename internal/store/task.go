package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"tasktracker/internal/domain"
)

// SortOrder is the direction of a task listing sort.
type SortOrder string

// Possible sort orders
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TaskFilter narrows a task listing. Zero-valued fields are ignored.
type TaskFilter struct {
	// Completed filters by completion status when non-nil.
	Completed *bool

	// Priority filters by priority when non-empty.
	Priority domain.Priority

	// Tag filters to tasks carrying the named tag when non-empty.
	Tag string

	// DueBefore/DueAfter bound the due date when non-nil.
	DueBefore *time.Time
	DueAfter  *time.Time

	// Search matches title or description case-insensitively when non-empty.
	Search string

	// SortBy orders results by one of due_date, priority, title, created_at.
	// Empty defaults to created_at.
	SortBy string

	// Order is the sort direction; empty defaults to descending.
	Order SortOrder

	// Offset/Limit paginate the result. Limit 0 means no limit.
	Offset int
	Limit  int
}

// TaskStore defines the interface for task data persistence.
// All read operations are scoped to an owner; a task is never visible to a
// user other than the one it belongs to.
type TaskStore interface {
	// Create saves a new task to the store.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID scoped to its owner, with tags loaded.
	// Returns ErrTaskNotFound if the task does not exist or belongs to a
	// different user.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// List retrieves the owner's tasks matching the filter, with tags loaded.
	List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]*domain.Task, error)

	// Update persists the mutable fields of an existing task and advances
	// updated_at. Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task and its reminders and tag links.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) TaskStore
}
