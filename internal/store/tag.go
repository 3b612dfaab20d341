package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"tasktracker/internal/domain"
)

// TagStore defines the interface for tag data persistence and the
// task-tag association.
type TagStore interface {
	// GetOrCreate returns the owner's tag with the given name, creating it
	// if it does not exist yet.
	GetOrCreate(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Tag, error)

	// ListByTask returns all tags attached to the given task.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Tag, error)

	// Attach links a tag to a task.
	// Returns ErrTagAssigned if the link already exists.
	Attach(ctx context.Context, taskID, tagID uuid.UUID) error

	// Detach removes the link between a tag and a task.
	// Returns ErrTagNotFound if the link does not exist.
	Detach(ctx context.Context, taskID, tagID uuid.UUID) error

	// GetByName returns the owner's tag with the given name.
	// Returns ErrTagNotFound if no such tag exists.
	GetByName(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Tag, error)

	// CopyLinks attaches every tag of the source task to the destination
	// task. Used when a recurring task spawns its successor so the new
	// instance never exists without its tags.
	CopyLinks(ctx context.Context, fromTaskID, toTaskID uuid.UUID) error

	// WithTx returns a new TagStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) TagStore
}
