package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/domain"
)

func reminderFixtures(t *testing.T, remindAt time.Time) (*domain.User, *domain.Task, *domain.Reminder) {
	t.Helper()

	owner, err := domain.NewUser("dana@example.com", "s3cret-password", "Dana")
	require.NoError(t, err)

	task, err := domain.NewTask(owner.ID, "renew passport", "", nil, domain.PriorityHigh)
	require.NoError(t, err)

	reminder, err := domain.NewReminder(task.ID, remindAt)
	require.NoError(t, err)

	return owner, task, reminder
}

func TestReminderRunDispatchesDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)
	owner, task, reminder := reminderFixtures(t, now.Add(-time.Minute))

	gateway := newFakeReminderGateway(owner, task, reminder)
	sink := &countingSink{}
	dispatcher := NewReminderDispatcher(gateway, sink, time.Second, nil)

	res, err := dispatcher.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Dispatched)
	assert.Zero(t, res.Skipped)
	assert.Empty(t, res.Failed)
	assert.True(t, reminder.Sent)
	assert.Equal(t, []uuid.UUID{reminder.ID}, sink.deliveries())

	// A sent reminder never comes back.
	res, err = dispatcher.Run(context.Background(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, res.Dispatched)
	assert.Len(t, sink.deliveries(), 1)
}

func TestReminderFutureReminderNotDispatched(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)
	owner, task, reminder := reminderFixtures(t, now.Add(time.Hour))

	gateway := newFakeReminderGateway(owner, task, reminder)
	sink := &countingSink{}
	dispatcher := NewReminderDispatcher(gateway, sink, time.Second, nil)

	res, err := dispatcher.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Zero(t, res.Dispatched)
	assert.False(t, reminder.Sent)
	assert.Empty(t, sink.deliveries())
}

func TestReminderSinkFailureLeavesReminderUnsent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)
	owner, task, reminder := reminderFixtures(t, now.Add(-time.Minute))

	gateway := newFakeReminderGateway(owner, task, reminder)
	sink := &countingSink{}
	sink.setErr(errors.New("push endpoint unavailable"))
	dispatcher := NewReminderDispatcher(gateway, sink, time.Second, nil)

	res, err := dispatcher.Run(context.Background(), now)
	require.NoError(t, err)

	require.Len(t, res.Failed, 1)
	assert.Equal(t, reminder.ID, res.Failed[0])
	assert.Zero(t, res.Dispatched)
	assert.False(t, reminder.Sent)

	// Once the sink recovers the reminder goes out on the next run.
	sink.setErr(nil)
	res, err = dispatcher.Run(context.Background(), now.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Dispatched)
	assert.Empty(t, res.Failed)
	assert.True(t, reminder.Sent)
	assert.Equal(t, []uuid.UUID{reminder.ID}, sink.deliveries())
}

func TestReminderScanErrorAbortsRun(t *testing.T) {
	t.Parallel()

	owner, task, reminder := reminderFixtures(t, time.Now().UTC().Add(-time.Minute))
	gateway := newFakeReminderGateway(owner, task, reminder)
	gateway.scanErr = errors.New("connection refused")
	dispatcher := NewReminderDispatcher(gateway, &countingSink{}, time.Second, nil)

	_, err := dispatcher.Run(context.Background(), time.Now().UTC())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to scan due reminders")
}

func TestReminderOverlappingRunsDeliverOnce(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)
	owner, task, reminder := reminderFixtures(t, now.Add(-time.Minute))

	gateway := newFakeReminderGateway(owner, task, reminder)
	sink := &countingSink{}
	dispatcher := NewReminderDispatcher(gateway, sink, time.Second, nil)

	var wg sync.WaitGroup
	results := make([]ReminderResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = dispatcher.Run(context.Background(), now)
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// Whichever interleaving occurs, the notification goes out exactly once.
	assert.Len(t, sink.deliveries(), 1)
	assert.Equal(t, 1, results[0].Dispatched+results[1].Dispatched)
	assert.True(t, reminder.Sent)
}
