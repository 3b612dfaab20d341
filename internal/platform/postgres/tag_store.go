package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"tasktracker/internal/domain"
	"tasktracker/internal/platform/logger"
	"tasktracker/internal/store"
)

// PostgresTagStore implements the store.TagStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTagStore creates a new PostgreSQL implementation of the
// TagStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTagStore(db store.DBTX, logger *slog.Logger) *PostgresTagStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTagStore{
		db:     db,
		logger: logger.With(slog.String("component", "tag_store")),
	}
}

// Ensure PostgresTagStore implements store.TagStore interface
var _ store.TagStore = (*PostgresTagStore)(nil)

// GetOrCreate implements store.TagStore.GetOrCreate
// Tag names are unique per owner; a concurrent insert of the same name is
// resolved by re-reading after the conflict.
func (s *PostgresTagStore) GetOrCreate(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tag, err := s.GetByName(ctx, ownerID, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, store.ErrTagNotFound) {
		return nil, err
	}

	tag, err = domain.NewTag(ownerID, name, "")
	if err != nil {
		log.Warn("tag validation failed during create",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, err
	}

	query := `
		INSERT INTO tags (id, owner_id, name, color, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.db.ExecContext(ctx, query, tag.ID, tag.OwnerID, tag.Name, tag.Color, tag.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			// Lost the race to a concurrent insert; the winner's row is the tag.
			return s.GetByName(ctx, ownerID, name)
		}
		log.Error("failed to create tag",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}

	log.Info("tag created",
		slog.String("tag_id", tag.ID.String()),
		slog.String("name", tag.Name))
	return tag, nil
}

// GetByName implements store.TagStore.GetByName
// Returns store.ErrTagNotFound if no such tag exists for the owner.
func (s *PostgresTagStore) GetByName(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, owner_id, name, color, created_at
		FROM tags
		WHERE owner_id = $1 AND name = $2
	`

	var tag domain.Tag
	err := s.db.QueryRowContext(ctx, query, ownerID, name).Scan(
		&tag.ID,
		&tag.OwnerID,
		&tag.Name,
		&tag.Color,
		&tag.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTagNotFound
		}
		log.Error("failed to get tag by name",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}

	return &tag, nil
}

// ListByTask implements store.TagStore.ListByTask
// Returns an empty slice if the task carries no tags.
func (s *PostgresTagStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT t.id, t.owner_id, t.name, t.color, t.created_at
		FROM tags t
		JOIN task_tags tt ON tt.tag_id = t.id
		WHERE tt.task_id = $1
		ORDER BY t.name
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to query tags by task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tags := []*domain.Tag{}
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.OwnerID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			log.Error("failed to scan tag row", slog.String("error", err.Error()))
			return nil, err
		}
		tags = append(tags, &tag)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return tags, nil
}

// Attach implements store.TagStore.Attach
// Returns store.ErrTagAssigned if the link already exists.
// Returns store.ErrInvalidEntity if the task or tag does not exist.
func (s *PostgresTagStore) Attach(ctx context.Context, taskID, tagID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO task_tags (task_id, tag_id)
		VALUES ($1, $2)
	`
	_, err := s.db.ExecContext(ctx, query, taskID, tagID)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrTagAssigned
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: task or tag does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to attach tag",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.String("tag_id", tagID.String()))
		return MapError(err)
	}

	return nil
}

// Detach implements store.TagStore.Detach
// Returns store.ErrTagNotFound if the link does not exist.
func (s *PostgresTagStore) Detach(ctx context.Context, taskID, tagID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM task_tags
		WHERE task_id = $1 AND tag_id = $2
	`
	result, err := s.db.ExecContext(ctx, query, taskID, tagID)
	if err != nil {
		log.Error("failed to detach tag",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.String("tag_id", tagID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrTagNotFound
	}

	return nil
}

// CopyLinks implements store.TagStore.CopyLinks
// It attaches every tag of the source task to the destination task in a
// single statement so a regenerated task never exists without its tags.
func (s *PostgresTagStore) CopyLinks(ctx context.Context, fromTaskID, toTaskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO task_tags (task_id, tag_id)
		SELECT $2, tag_id
		FROM task_tags
		WHERE task_id = $1
		ON CONFLICT (task_id, tag_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, fromTaskID, toTaskID)
	if err != nil {
		log.Error("failed to copy tag links",
			slog.String("error", err.Error()),
			slog.String("from_task_id", fromTaskID.String()),
			slog.String("to_task_id", toTaskID.String()))
		return MapError(err)
	}

	return nil
}

// WithTx implements store.TagStore.WithTx
// It returns a new TagStore instance that uses the provided transaction.
func (s *PostgresTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return &PostgresTagStore{
		db:     tx,
		logger: s.logger,
	}
}
