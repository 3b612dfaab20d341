package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tasktracker/internal/domain"
	"tasktracker/internal/platform/logger"
	"tasktracker/internal/store"
)

// taskColumns is the canonical column list for task queries; every scan of a
// task row uses the same order.
const taskColumns = `id, owner_id, title, description, completed, due_date, priority,
	is_recurring, recurrence_type, recurrence_interval, last_processed_at, created_at, updated_at`

// sortColumns whitelists the task listing sort keys. Anything outside this
// map falls back to created_at; sort keys never reach the SQL text directly.
var sortColumns = map[string]string{
	"due_date":   "due_date",
	"priority":   "priority",
	"title":      "title",
	"created_at": "created_at",
}

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	tags   *PostgresTagStore
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		tags:   NewPostgresTagStore(db, logger),
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the owner does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		task.Completed,
		task.DueDate,
		task.Priority,
		task.IsRecurring,
		task.RecurrenceType,
		task.RecurrenceInterval,
		task.LastProcessedAt,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("owner_id", task.OwnerID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.OwnerID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", task.OwnerID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// The lookup is scoped to the owner; a task belonging to another user is
// indistinguishable from a missing one.
// Returns store.ErrTaskNotFound if no matching task exists.
func (s *PostgresTaskStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found",
				slog.String("task_id", id.String()),
				slog.String("owner_id", ownerID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	tags, err := s.tags.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	task.Tags = tags

	return task, nil
}

// List implements store.TaskStore.List
// It assembles the WHERE clause from the filter's set fields; every value
// travels as a bind parameter.
func (s *PostgresTaskStore) List(ctx context.Context, ownerID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1`)
	args := []interface{}{ownerID}

	addArg := func(clause string, value interface{}) {
		args = append(args, value)
		fmt.Fprintf(&sb, clause, len(args))
	}

	if filter.Completed != nil {
		addArg(" AND completed = $%d", *filter.Completed)
	}
	if filter.Priority != "" {
		addArg(" AND priority = $%d", filter.Priority)
	}
	if filter.Tag != "" {
		addArg(` AND EXISTS (
			SELECT 1 FROM task_tags tt
			JOIN tags g ON g.id = tt.tag_id
			WHERE tt.task_id = tasks.id AND g.name = $%d
		)`, filter.Tag)
	}
	if filter.DueBefore != nil {
		addArg(" AND due_date IS NOT NULL AND due_date <= $%d", *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		addArg(" AND due_date IS NOT NULL AND due_date >= $%d", *filter.DueAfter)
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		n := len(args)
		fmt.Fprintf(&sb,
			" AND (title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')",
			n, n)
	}

	sortCol, ok := sortColumns[filter.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	direction := "DESC"
	if filter.Order == store.SortAsc {
		direction = "ASC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s, id", sortCol, direction)

	if filter.Limit > 0 {
		addArg(" LIMIT $%d", filter.Limit)
	}
	if filter.Offset > 0 {
		addArg(" OFFSET $%d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	for _, task := range tasks {
		tags, err := s.tags.ListByTask(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		task.Tags = tags
	}

	log.Debug("listed tasks",
		slog.String("owner_id", ownerID.String()),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// Update implements store.TaskStore.Update
// It persists all mutable fields and advances updated_at, which is what
// re-arms the recurrence predicate when a recurring task is completed again.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, completed = $3, due_date = $4,
			priority = $5, is_recurring = $6, recurrence_type = $7,
			recurrence_interval = $8, updated_at = $9
		WHERE id = $10 AND owner_id = $11
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Completed,
		task.DueDate,
		task.Priority,
		task.IsRecurring,
		task.RecurrenceType,
		task.RecurrenceInterval,
		task.UpdatedAt,
		task.ID,
		task.OwnerID,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		log.Debug("task not found for update",
			slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task updated successfully",
		slog.String("task_id", task.ID.String()))
	return nil
}

// Delete implements store.TaskStore.Delete
// Reminders and tag links are removed by the schema's cascading constraints.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM tasks
		WHERE id = $1 AND owner_id = $2
	`
	result, err := s.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		log.Debug("task not found for delete",
			slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully",
		slog.String("task_id", id.String()),
		slog.String("owner_id", ownerID.String()))
	return nil
}

// WithTx implements store.TaskStore.WithTx
// It returns a new TaskStore instance that uses the provided transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		tags:   NewPostgresTagStore(tx, s.logger),
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for task scanning.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTask reads one task row in taskColumns order.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.DueDate,
		&task.Priority,
		&task.IsRecurring,
		&task.RecurrenceType,
		&task.RecurrenceInterval,
		&task.LastProcessedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
