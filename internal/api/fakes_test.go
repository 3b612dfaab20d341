package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/api/shared"
	"tasktracker/internal/domain"
	"tasktracker/internal/service/auth"
	"tasktracker/internal/store"
)

// memUserStore is an in-memory store.UserStore for handler tests.
type memUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (s *memUserStore) Create(ctx context.Context, user *domain.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return fmt.Errorf("%w: %s", store.ErrEmailExists, user.Email)
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *memUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUserStore) WithTx(tx *sql.Tx) store.UserStore { return s }

// memTaskStore is an in-memory store.TaskStore with owner scoping and
// filter support matching the real store's semantics.
type memTaskStore struct {
	tasks map[uuid.UUID]*domain.Task
	tags  *memTagStore
}

func newMemTaskStore(tags *memTagStore) *memTaskStore {
	return &memTaskStore{tasks: make(map[uuid.UUID]*domain.Task), tags: tags}
}

func (s *memTaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.tasks[task.ID] = task
	return nil
}

func (s *memTaskStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	task, ok := s.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	if s.tags != nil {
		task.Tags, _ = s.tags.ListByTask(ctx, task.ID)
	}
	return task, nil
}

func (s *memTaskStore) List(ctx context.Context, ownerID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range s.tasks {
		if task.OwnerID != ownerID {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		if filter.Tag != "" && !s.hasTag(ctx, task.ID, ownerID, filter.Tag) {
			continue
		}
		if filter.DueBefore != nil && (task.DueDate == nil || task.DueDate.After(*filter.DueBefore)) {
			continue
		}
		if filter.DueAfter != nil && (task.DueDate == nil || task.DueDate.Before(*filter.DueAfter)) {
			continue
		}
		if filter.Search != "" {
			q := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(task.Title), q) &&
				!strings.Contains(strings.ToLower(task.Description), q) {
				continue
			}
		}
		out = append(out, task)
	}

	sortTasks(out, filter)

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *memTaskStore) hasTag(ctx context.Context, taskID, ownerID uuid.UUID, name string) bool {
	if s.tags == nil {
		return false
	}
	tags, _ := s.tags.ListByTask(ctx, taskID)
	for _, tag := range tags {
		if tag.OwnerID == ownerID && tag.Name == name {
			return true
		}
	}
	return false
}

func sortTasks(tasks []*domain.Task, filter store.TaskFilter) {
	priorityRank := map[domain.Priority]int{
		domain.PriorityLow:    1,
		domain.PriorityMedium: 2,
		domain.PriorityHigh:   3,
	}

	less := func(a, b *domain.Task) bool {
		switch filter.SortBy {
		case "title":
			return a.Title < b.Title
		case "priority":
			return priorityRank[a.Priority] < priorityRank[b.Priority]
		case "due_date":
			if a.DueDate == nil {
				return false
			}
			if b.DueDate == nil {
				return true
			}
			return a.DueDate.Before(*b.DueDate)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if filter.Order == store.SortAsc {
			return less(tasks[i], tasks[j])
		}
		return less(tasks[j], tasks[i])
	})
}

func (s *memTaskStore) Update(ctx context.Context, task *domain.Task) error {
	existing, ok := s.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return store.ErrTaskNotFound
	}
	task.UpdatedAt = time.Now().UTC()
	s.tasks[task.ID] = task
	return nil
}

func (s *memTaskStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	task, ok := s.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return s }

// memTagStore is an in-memory store.TagStore.
type memTagStore struct {
	tags  map[uuid.UUID]*domain.Tag
	links map[uuid.UUID]map[uuid.UUID]bool // taskID -> tagID set
}

func newMemTagStore() *memTagStore {
	return &memTagStore{
		tags:  make(map[uuid.UUID]*domain.Tag),
		links: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (s *memTagStore) GetOrCreate(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Tag, error) {
	if tag, err := s.GetByName(ctx, ownerID, name); err == nil {
		return tag, nil
	}
	tag, err := domain.NewTag(ownerID, name, "")
	if err != nil {
		return nil, err
	}
	s.tags[tag.ID] = tag
	return tag, nil
}

func (s *memTagStore) GetByName(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Tag, error) {
	for _, tag := range s.tags {
		if tag.OwnerID == ownerID && tag.Name == name {
			return tag, nil
		}
	}
	return nil, store.ErrTagNotFound
}

func (s *memTagStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Tag, error) {
	var out []*domain.Tag
	for tagID := range s.links[taskID] {
		if tag, ok := s.tags[tagID]; ok {
			out = append(out, tag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memTagStore) Attach(ctx context.Context, taskID, tagID uuid.UUID) error {
	if s.links[taskID] == nil {
		s.links[taskID] = make(map[uuid.UUID]bool)
	}
	if s.links[taskID][tagID] {
		return store.ErrTagAssigned
	}
	s.links[taskID][tagID] = true
	return nil
}

func (s *memTagStore) Detach(ctx context.Context, taskID, tagID uuid.UUID) error {
	if !s.links[taskID][tagID] {
		return store.ErrTagNotFound
	}
	delete(s.links[taskID], tagID)
	return nil
}

func (s *memTagStore) CopyLinks(ctx context.Context, fromTaskID, toTaskID uuid.UUID) error {
	for tagID := range s.links[fromTaskID] {
		if err := s.Attach(ctx, toTaskID, tagID); err != nil && err != store.ErrTagAssigned {
			return err
		}
	}
	return nil
}

func (s *memTagStore) WithTx(tx *sql.Tx) store.TagStore { return s }

// memReminderStore is an in-memory store.ReminderStore.
type memReminderStore struct {
	reminders map[uuid.UUID]*domain.Reminder
	tasks     *memTaskStore
}

func newMemReminderStore(tasks *memTaskStore) *memReminderStore {
	return &memReminderStore{reminders: make(map[uuid.UUID]*domain.Reminder), tasks: tasks}
}

func (s *memReminderStore) Create(ctx context.Context, reminder *domain.Reminder) error {
	s.reminders[reminder.ID] = reminder
	return nil
}

func (s *memReminderStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Reminder, error) {
	var out []*domain.Reminder
	for _, reminder := range s.reminders {
		if reminder.TaskID == taskID {
			out = append(out, reminder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemindAt.Before(out[j].RemindAt) })
	return out, nil
}

func (s *memReminderStore) ListPendingByOwner(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]*domain.Reminder, error) {
	var out []*domain.Reminder
	for _, reminder := range s.reminders {
		task, ok := s.tasks.tasks[reminder.TaskID]
		if !ok || task.OwnerID != ownerID {
			continue
		}
		if reminder.Due(now) {
			out = append(out, reminder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemindAt.Before(out[j].RemindAt) })
	return out, nil
}

func (s *memReminderStore) WithTx(tx *sql.Tx) store.ReminderStore { return s }

// stubJWTService issues reversible tokens so tests avoid real signing.
type stubJWTService struct{}

func (stubJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return "tok-" + userID.String(), nil
}

func (stubJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	raw, ok := strings.CutPrefix(token, "tok-")
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: id, Subject: raw}, nil
}

// plainVerifier marks hashes with a prefix instead of running bcrypt.
type plainVerifier struct{}

func (plainVerifier) Hash(password string) (string, error) {
	return "hashed$" + password, nil
}

func (plainVerifier) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed$"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

// jsonRequest builds a request with an optional JSON body and the
// authenticated user placed in the context.
func jsonRequest(t *testing.T, method, target string, body interface{}, userID uuid.UUID) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, target, reader)
	if userID != uuid.Nil {
		r = r.WithContext(context.WithValue(r.Context(), shared.UserIDContextKey, userID))
	}
	return r
}

// withURLParams attaches chi route parameters to the request.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeBody unmarshals a recorded JSON response into dst.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

// seedUser registers a user directly in the store with a stub hash.
func seedUser(t *testing.T, users *memUserStore, email, password string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, password, "")
	require.NoError(t, err)
	user.HashedPassword = "hashed$" + password
	user.Password = ""
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

// seedTask creates a task owned by the given user.
func seedTask(t *testing.T, tasks *memTaskStore, ownerID uuid.UUID, title string) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(ownerID, title, "", nil, domain.PriorityMedium)
	require.NoError(t, err)
	require.NoError(t, tasks.Create(context.Background(), task))
	return task
}
