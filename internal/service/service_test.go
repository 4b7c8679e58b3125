package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/remindbot/internal/reminder"
	"github.com/edgard/remindbot/internal/task"
)

type delivery struct {
	owner int64
	text  string
}

type fixture struct {
	svc       *Service
	store     *task.Store
	reminders *reminder.Scheduler
	clock     *clockwork.FakeClock
	sent      chan delivery
}

func newFixture(t *testing.T, now time.Time, persister task.Persister) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(now)
	sent := make(chan delivery, 16)
	reminders := reminder.NewScheduler(reminder.Options{
		Clock: clock,
		Notifier: reminder.NotifierFunc(func(_ context.Context, owner int64, text string) error {
			sent <- delivery{owner: owner, text: text}
			return nil
		}),
	})
	t.Cleanup(reminders.Stop)
	store := task.NewStore(persister, nil)
	return &fixture{
		svc:       New(store, reminders, clock, nil),
		store:     store,
		reminders: reminders,
		clock:     clock,
		sent:      sent,
	}
}

func (f *fixture) expectDelivery(t *testing.T) delivery {
	t.Helper()
	select {
	case d := <-f.sent:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("expected a reminder delivery")
	}
	return delivery{}
}

func (f *fixture) expectNoDelivery(t *testing.T) {
	t.Helper()
	select {
	case d := <-f.sent:
		t.Fatalf("unexpected delivery: %+v", d)
	case <-time.After(100 * time.Millisecond):
	}
}

func morning() time.Time {
	return time.Date(2025, 3, 6, 8, 0, 0, 0, time.Local)
}

func TestAddTaskAppearsLast(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, morning(), nil)

	inputs := []struct{ text, due string }{
		{"buy bread", ""},
		{"call mom", "18:00"},
		{"standup", "09:30"},
	}
	for _, in := range inputs {
		_, err := f.svc.AddTask(ctx, 1, in.text, in.due)
		require.NoError(t, err)

		list := f.svc.ListTasks(1)
		last := list[len(list)-1]
		assert.Equal(t, len(list), last.Position)
		assert.Equal(t, in.text, last.Task.Text)
		assert.Equal(t, in.due, last.Task.DueString())
	}
}

func TestAddTaskArmOutcomes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, time.Date(2025, 3, 6, 10, 0, 0, 0, time.Local), nil)

	res, err := f.svc.AddTask(ctx, 1, "no time", "")
	require.NoError(t, err)
	assert.Equal(t, reminder.NoTime, res.Arm.Outcome)

	res, err = f.svc.AddTask(ctx, 1, "too soon", "10:30")
	require.NoError(t, err)
	assert.Equal(t, reminder.TooSoon, res.Arm.Outcome)
	assert.False(t, f.reminders.IsPending(res.Task.ID))

	res, err = f.svc.AddTask(ctx, 1, "later", "15:00")
	require.NoError(t, err)
	assert.Equal(t, reminder.Scheduled, res.Arm.Outcome)
	assert.Equal(t, time.Date(2025, 3, 6, 14, 0, 0, 0, time.Local), res.Arm.FireAt)

	assert.Len(t, f.svc.ListTasks(1), 3, "too-soon and timeless tasks are still saved")
}

func TestAddTaskValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, morning(), nil)

	_, err := f.svc.AddTask(ctx, 1, "  ", "10:00")
	assert.True(t, errors.Is(err, task.ErrInvalidInput))

	for _, bad := range []string{"9:00", "25:00", "10-00", "noon"} {
		_, err = f.svc.AddTask(ctx, 1, "task", bad)
		assert.True(t, errors.Is(err, task.ErrInvalidTime), "due %q", bad)
	}
	assert.Empty(t, f.svc.ListTasks(1))
}

func TestReminderDeliveredBeforeDueTime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, morning(), nil)

	_, err := f.svc.AddTask(ctx, 7, "call mom", "12:00")
	require.NoError(t, err)

	f.clock.Advance(3 * time.Hour)
	d := f.expectDelivery(t)
	assert.Equal(t, int64(7), d.owner)
	assert.Equal(t, "call mom", d.text)

	require.Eventually(t, func() bool { return len(f.svc.ListReminders(7)) == 0 }, time.Second, 5*time.Millisecond)
	assert.Len(t, f.svc.ListTasks(7), 1, "firing does not remove the task")
}

func TestEditAlwaysRearms(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, morning(), nil)

	added, err := f.svc.AddTask(ctx, 1, "call mom", "12:00")
	require.NoError(t, err)
	before, ok := f.reminders.Pending(added.Task.ID)
	require.True(t, ok)

	res, err := f.svc.EditTask(ctx, 1, 1, "call mom and dad", "12:00")
	require.NoError(t, err)
	assert.Equal(t, reminder.Scheduled, res.Arm.Outcome)

	after, ok := f.reminders.Pending(added.Task.ID)
	require.True(t, ok)
	assert.NotEqual(t, before.Seq, after.Seq)
	assert.Equal(t, before.FireAt, after.FireAt)

	f.clock.Advance(3 * time.Hour)
	d := f.expectDelivery(t)
	assert.Equal(t, "call mom and dad", d.text)
	f.expectNoDelivery(t)
}

func TestEditClearsDueTime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, morning(), nil)

	added, _ := f.svc.AddTask(ctx, 1, "call mom", "12:00")
	res, err := f.svc.EditTask(ctx, 1, 1, "call mom", "")
	require.NoError(t, err)
	assert.Equal(t, reminder.NoTime, res.Arm.Outcome)
	assert.False(t, res.Task.HasDue())
	assert.False(t, f.reminders.IsPending(added.Task.ID))

	f.clock.Advance(6 * time.Hour)
	f.expectNoDelivery(t)
}

func TestEditValidationLeavesTaskUntouched(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, morning(), nil)

	added, _ := f.svc.AddTask(ctx, 1, "call mom", "12:00")
	before, _ := f.reminders.Pending(added.Task.ID)

	_, err := f.svc.EditTask(ctx, 1, 1, "new text", "12:75")
	assert.True(t, errors.Is(err, task.ErrInvalidTime))
	_, err = f.svc.EditTask(ctx, 1, 1, "", "13:00")
	assert.True(t, errors.Is(err, task.ErrInvalidInput))

	got, _ := f.store.Get(added.Task.ID)
	assert.Equal(t, "call mom", got.Text)
	assert.Equal(t, "12:00", got.DueString())
	after, ok := f.reminders.Pending(added.Task.ID)
	require.True(t, ok)
	assert.Equal(t, before.Seq, after.Seq, "rejected edits do not touch the reminder")
}

func TestEditOutOfRange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, morning(), nil)

	_, _ = f.svc.AddTask(ctx, 1, "a", "")
	_, err := f.svc.EditTask(ctx, 1, 2, "b", "")
	var sel *task.SelectionError
	require.True(t, errors.As(err, &sel))
	assert.Equal(t, 2, sel.Position)
	assert.Equal(t, "a", f.svc.ListTasks(1)[0].Task.Text)
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, morning(), nil)

	_, _ = f.svc.AddTask(ctx, 1, "a", "12:00")
	_, _ = f.svc.AddTask(ctx, 1, "b", "")

	deleted, err := f.svc.DeleteTask(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", deleted.Text)
	assert.False(t, f.reminders.IsPending(deleted.ID))

	list := f.svc.ListTasks(1)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Position, "display positions are recomputed")
	assert.Equal(t, "b", list[0].Task.Text)

	f.clock.Advance(6 * time.Hour)
	f.expectNoDelivery(t)
}

func TestDeleteNonexistentPosition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, morning(), nil)

	_, _ = f.svc.AddTask(ctx, 1, "a", "")
	_, _ = f.svc.AddTask(ctx, 1, "b", "")

	_, err := f.svc.DeleteTask(ctx, 1, 99)
	assert.True(t, errors.Is(err, task.ErrOutOfRange))
	assert.Len(t, f.svc.ListTasks(1), 2)
}

func TestPositionsResolvedAtSelectionTime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, morning(), nil)

	_, _ = f.svc.AddTask(ctx, 1, "a", "")
	_, _ = f.svc.AddTask(ctx, 1, "b", "")
	shown := f.svc.ListTasks(1)
	require.Len(t, shown, 2)

	// Another session deletes the first task after the list was shown.
	_, err := f.svc.DeleteTask(ctx, 1, 1)
	require.NoError(t, err)

	_, err = f.svc.DeleteTask(ctx, 1, 2)
	assert.True(t, errors.Is(err, task.ErrOutOfRange))

	deleted, err := f.svc.DeleteTask(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", deleted.Text)
}

func TestListReminders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, time.Date(2025, 3, 6, 10, 0, 0, 0, time.Local), nil)

	_, _ = f.svc.AddTask(ctx, 1, "no time", "")
	_, _ = f.svc.AddTask(ctx, 1, "too soon", "10:30")
	_, _ = f.svc.AddTask(ctx, 1, "later", "18:00")
	_, _ = f.svc.AddTask(ctx, 2, "someone else", "18:00")

	got := f.svc.ListReminders(1)
	require.Len(t, got, 1)
	assert.Equal(t, "later", got[0].Task.Text)
	assert.Equal(t, 3, got[0].Position)
	assert.True(t, got[0].HasReminder)

	all := f.svc.ListTasks(1)
	require.Len(t, all, 3)
	assert.False(t, all[0].HasReminder)
	assert.False(t, all[1].HasReminder)
	assert.True(t, all[2].HasReminder)
}

func TestConcurrentOwnersDoNotMix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, morning(), nil)

	var wg sync.WaitGroup
	for _, owner := range []int64{1, 2} {
		wg.Add(1)
		go func(owner int64) {
			defer wg.Done()
			for i := 0; i < 40; i++ {
				_, err := f.svc.AddTask(ctx, owner, fmt.Sprintf("%d-%d", owner, i), "18:00")
				assert.NoError(t, err)
				for _, e := range f.svc.ListTasks(owner) {
					assert.Equal(t, owner, e.Task.Owner)
				}
				if i%3 == 0 {
					_, err := f.svc.DeleteTask(ctx, owner, 1)
					assert.NoError(t, err)
				}
			}
		}(owner)
	}
	wg.Wait()

	for _, owner := range []int64{1, 2} {
		for _, e := range f.svc.ListTasks(owner) {
			assert.Equal(t, owner, e.Task.Owner)
		}
		assert.Len(t, f.svc.ListReminders(owner), len(f.svc.ListTasks(owner)))
	}
}

// failingPersister accepts inserts and fails every other write.
type failingPersister struct{}

func (failingPersister) LoadTasks(context.Context) ([]task.Task, error) { return nil, nil }
func (failingPersister) InsertTask(context.Context, task.Task) error    { return nil }
func (failingPersister) UpdateTask(context.Context, task.Task) error {
	return errors.New("database is locked")
}
func (failingPersister) DeleteTask(context.Context, int64) error {
	return errors.New("database is locked")
}

func TestPersistenceFailureIsAllOrNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, morning(), failingPersister{})

	added, err := f.svc.AddTask(ctx, 1, "call mom", "12:00")
	require.NoError(t, err)

	_, err = f.svc.EditTask(ctx, 1, 1, "changed", "")
	require.Error(t, err)
	got, _ := f.store.Get(added.Task.ID)
	assert.Equal(t, "call mom", got.Text)
	assert.True(t, f.reminders.IsPending(added.Task.ID), "reminder restored after failed edit")

	_, err = f.svc.DeleteTask(ctx, 1, 1)
	require.Error(t, err)
	assert.Len(t, f.svc.ListTasks(1), 1)
	assert.True(t, f.reminders.IsPending(added.Task.ID), "reminder restored after failed delete")

	f.clock.Advance(3 * time.Hour)
	d := f.expectDelivery(t)
	assert.Equal(t, "call mom", d.text)
}
