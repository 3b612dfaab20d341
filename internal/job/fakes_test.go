package job

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tasktracker/internal/domain"
)

// fakeTaskGateway implements TaskGateway over an in-memory task map with the
// same claim semantics as the real gateway: the regeneration predicate is
// re-checked under the lock and last_processed_at is stamped atomically with
// the successor insert.
type fakeTaskGateway struct {
	mu      sync.Mutex
	tasks   map[uuid.UUID]*domain.Task
	created []*domain.Task

	scanErr error
	failOn  map[uuid.UUID]error

	// beforeClaim, when set, runs at the start of each RegenerateTask call
	// before the lock is taken. Tests use it to coordinate overlap.
	beforeClaim func()
}

func newFakeTaskGateway(tasks ...*domain.Task) *fakeTaskGateway {
	g := &fakeTaskGateway{
		tasks:  make(map[uuid.UUID]*domain.Task),
		failOn: make(map[uuid.UUID]error),
	}
	for _, task := range tasks {
		g.tasks[task.ID] = task
	}
	return g
}

func (g *fakeTaskGateway) ListRecurrenceCandidates(ctx context.Context) ([]uuid.UUID, error) {
	if g.scanErr != nil {
		return nil, g.scanErr
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var ids []uuid.UUID
	for id, task := range g.tasks {
		if task.RegenerationDue() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (g *fakeTaskGateway) RegenerateTask(ctx context.Context, id uuid.UUID, now time.Time, nextDue NextDueFunc) (bool, error) {
	if g.beforeClaim != nil {
		g.beforeClaim()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	task, ok := g.tasks[id]
	if !ok {
		return false, nil
	}
	if err, ok := g.failOn[id]; ok {
		return false, err
	}
	if !task.RegenerationDue() {
		return false, nil
	}

	next, err := nextDue(task)
	if err != nil {
		return false, err
	}

	successor := task.Successor(next)
	g.tasks[successor.ID] = successor
	g.created = append(g.created, successor)

	stamp := now
	task.LastProcessedAt = &stamp
	return true, nil
}

func (g *fakeTaskGateway) successors() []*domain.Task {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*domain.Task, len(g.created))
	copy(out, g.created)
	return out
}

// fakeReminderGateway implements ReminderGateway with the real gateway's
// deliver-then-mark ordering: sent flips only after deliver returns nil.
type fakeReminderGateway struct {
	mu        sync.Mutex
	reminders map[uuid.UUID]*domain.Reminder
	tasks     map[uuid.UUID]*domain.Task
	owners    map[uuid.UUID]*domain.User

	scanErr error
}

func newFakeReminderGateway(owner *domain.User, task *domain.Task, reminders ...*domain.Reminder) *fakeReminderGateway {
	g := &fakeReminderGateway{
		reminders: make(map[uuid.UUID]*domain.Reminder),
		tasks:     map[uuid.UUID]*domain.Task{task.ID: task},
		owners:    map[uuid.UUID]*domain.User{owner.ID: owner},
	}
	for _, reminder := range reminders {
		g.reminders[reminder.ID] = reminder
	}
	return g
}

func (g *fakeReminderGateway) ListDueReminders(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	if g.scanErr != nil {
		return nil, g.scanErr
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var ids []uuid.UUID
	for id, reminder := range g.reminders {
		if reminder.Due(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (g *fakeReminderGateway) DispatchReminder(ctx context.Context, id uuid.UUID, now time.Time, deliver DeliverFunc) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	reminder, ok := g.reminders[id]
	if !ok {
		return false, nil
	}
	if !reminder.Due(now) {
		return false, nil
	}

	task := g.tasks[reminder.TaskID]
	owner := g.owners[task.OwnerID]

	if err := deliver(ctx, reminder, task, owner); err != nil {
		return false, err
	}

	reminder.Sent = true
	return true, nil
}

// countingSink records deliveries and can be told to fail.
type countingSink struct {
	mu        sync.Mutex
	delivered []uuid.UUID
	err       error
}

func (s *countingSink) Deliver(ctx context.Context, reminder *domain.Reminder, task *domain.Task, owner *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.delivered = append(s.delivered, reminder.ID)
	return nil
}

func (s *countingSink) deliveries() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, len(s.delivered))
	copy(out, s.delivered)
	return out
}

func (s *countingSink) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// completedRecurringTask builds a completed recurring task due for
// regeneration.
func completedRecurringTask(typ domain.RecurrenceType, interval int, due, completedAt time.Time) *domain.Task {
	return &domain.Task{
		ID:                 uuid.New(),
		OwnerID:            uuid.New(),
		Title:              "recurring chore",
		Description:        "the usual",
		Completed:          true,
		DueDate:            &due,
		Priority:           domain.PriorityMedium,
		IsRecurring:        true,
		RecurrenceType:     typ,
		RecurrenceInterval: interval,
		CreatedAt:          due.Add(-24 * time.Hour),
		UpdatedAt:          completedAt,
	}
}
