package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Tag
var (
	ErrEmptyTagID      = errors.New("tag ID cannot be empty")
	ErrEmptyTagOwnerID = errors.New("tag owner ID cannot be empty")
	ErrEmptyTagName    = errors.New("tag name cannot be empty")
)

// Tag is a user-scoped label attached to tasks. Tags form a many-to-many
// relationship with tasks; the association carries no ordering.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTag creates a new Tag owned by the given user.
// Returns an error if validation fails.
func NewTag(ownerID uuid.UUID, name, color string) (*Tag, error) {
	tag := &Tag{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(name),
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}

	if err := tag.Validate(); err != nil {
		return nil, err
	}

	return tag, nil
}

// Validate checks if the Tag has valid data.
func (t *Tag) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTagID
	}

	if t.OwnerID == uuid.Nil {
		return ErrEmptyTagOwnerID
	}

	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyTagName
	}

	return nil
}
