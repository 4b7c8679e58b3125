package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/remindbot/internal/task"
)

// loadedPersister serves a fixed set of tasks, as if left by a previous run.
type loadedPersister struct{ tasks []task.Task }

func (p loadedPersister) LoadTasks(context.Context) ([]task.Task, error) { return p.tasks, nil }
func (loadedPersister) InsertTask(context.Context, task.Task) error      { return nil }
func (loadedPersister) UpdateTask(context.Context, task.Task) error      { return nil }
func (loadedPersister) DeleteTask(context.Context, int64) error          { return nil }

func TestRecoverRemindersAfterRestart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 3, 6, 10, 0, 0, 0, time.Local)
	f := newFixture(t, now, loadedPersister{tasks: []task.Task{
		{ID: 1, Owner: 1, Text: "later", Due: &task.DueTime{Hour: 18}},
		{ID: 2, Owner: 1, Text: "no time"},
		{ID: 3, Owner: 2, Text: "too soon", Due: &task.DueTime{Hour: 10, Minute: 30}},
		{ID: 4, Owner: 2, Text: "tomorrow", Due: &task.DueTime{Hour: 7}},
	}})
	require.NoError(t, f.store.Load(ctx))

	armed, err := f.svc.RecoverReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, armed)
	assert.True(t, f.reminders.IsPending(1))
	assert.False(t, f.reminders.IsPending(2))
	assert.False(t, f.reminders.IsPending(3))
	assert.True(t, f.reminders.IsPending(4))

	again, err := f.svc.RecoverReminders(ctx)
	require.NoError(t, err)
	assert.Zero(t, again, "already pending reminders are left alone")
}

func TestRecoverDoesNotReplacePendingHandles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, morning(), nil)

	added, _ := f.svc.AddTask(ctx, 1, "call mom", "12:00")
	before, _ := f.reminders.Pending(added.Task.ID)

	_, err := f.svc.RecoverReminders(ctx)
	require.NoError(t, err)
	after, ok := f.reminders.Pending(added.Task.ID)
	require.True(t, ok)
	assert.Equal(t, before.Seq, after.Seq)
}

func TestSweepArmsNextOccurrenceAfterDueTime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, morning(), nil)

	added, _ := f.svc.AddTask(ctx, 1, "call mom", "12:00")
	f.clock.Advance(3 * time.Hour)
	f.expectDelivery(t)
	require.Eventually(t, func() bool { return !f.reminders.IsPending(added.Task.ID) }, time.Second, 5*time.Millisecond)

	// Between the reminder and the due time the same occurrence is not re-armed.
	armed, err := f.svc.RecoverReminders(ctx)
	require.NoError(t, err)
	assert.Zero(t, armed)

	// Once the due time has passed, the next day's reminder is armed.
	f.clock.Advance(90 * time.Minute)
	armed, err = f.svc.RecoverReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, armed)
	pending, ok := f.reminders.Pending(added.Task.ID)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 7, 11, 0, 0, 0, time.Local), pending.FireAt)
}

func TestRecoverHonoursCancelledContext(t *testing.T) {
	t.Parallel()
	f := newFixture(t, morning(), nil)
	_, _ = f.svc.AddTask(context.Background(), 1, "a", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.svc.RecoverReminders(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
