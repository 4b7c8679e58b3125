package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/remindbot/internal/task"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { CloseDB(db) })
	return db
}

func TestTaskRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewStore(newTestDB(t), nil)
	require.NoError(t, store.Ping(ctx))

	due := task.DueTime{Hour: 9, Minute: 5}
	require.NoError(t, store.InsertTask(ctx, task.Task{ID: 2, Owner: 10, Text: "call mom", Due: &due}))
	require.NoError(t, store.InsertTask(ctx, task.Task{ID: 1, Owner: 11, Text: "buy bread"}))

	got, err := store.LoadTasks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, task.Task{ID: 1, Owner: 11, Text: "buy bread"}, got[0])
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, "09:05", got[1].DueString())

	got[1].Text = "call dad"
	got[1].Due = nil
	require.NoError(t, store.UpdateTask(ctx, got[1]))
	require.NoError(t, store.DeleteTask(ctx, 1))
	require.NoError(t, store.DeleteTask(ctx, 1), "deleting twice is not an error")

	got, err = store.LoadTasks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, task.Task{ID: 2, Owner: 10, Text: "call dad"}, got[0])
}

func TestInsertValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewStore(newTestDB(t), nil)

	assert.Error(t, store.InsertTask(ctx, task.Task{ID: 0, Owner: 1, Text: "x"}))
	assert.Error(t, store.InsertTask(ctx, task.Task{ID: 1, Owner: 0, Text: "x"}))

	require.NoError(t, store.InsertTask(ctx, task.Task{ID: 1, Owner: 1, Text: "x"}))
	assert.Error(t, store.InsertTask(ctx, task.Task{ID: 1, Owner: 1, Text: "dup"}), "ids are unique")
}

func TestUpdateMissingTask(t *testing.T) {
	t.Parallel()
	store := NewStore(newTestDB(t), nil)

	err := store.UpdateTask(context.Background(), task.Task{ID: 9, Owner: 1, Text: "x"})
	assert.True(t, errors.Is(err, task.ErrNotFound))
}

func TestTaskStoreWriteThrough(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	first := task.NewStore(NewStore(db, nil), nil)
	require.NoError(t, first.Load(ctx))
	a, err := first.Add(ctx, 1, "a", &task.DueTime{Hour: 12})
	require.NoError(t, err)
	b, err := first.Add(ctx, 1, "b", nil)
	require.NoError(t, err)
	_, err = first.Remove(ctx, a.ID)
	require.NoError(t, err)

	second := task.NewStore(NewStore(db, nil), nil)
	require.NoError(t, second.Load(ctx))
	list := second.ListByOwner(1)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	c, err := second.Add(ctx, 1, "c", nil)
	require.NoError(t, err)
	assert.Greater(t, c.ID, b.ID)
}

func insertRawTask(t *testing.T, db *sqlx.DB, id int64, due string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO tasks (id, owner, text, due_time, created_at, updated_at)
        VALUES (?, 1, 'raw', ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`, id, due)
	require.NoError(t, err)
}

func TestLoadRefusesUnreadableRow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	insertRawTask(t, db, 1, "10:00")
	insertRawTask(t, db, 2, "9:5")

	_, err := NewStore(db, nil).LoadTasks(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, task.ErrInvalidTime)
	assert.Contains(t, err.Error(), "task 2")

	// A store that cannot load must not start handing out ids that collide
	// with the unreadable row.
	s := task.NewStore(NewStore(db, nil), nil)
	require.Error(t, s.Load(ctx))
}

func TestMaintain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	store := NewStore(db, nil)

	require.NoError(t, store.InsertTask(ctx, task.Task{ID: 1, Owner: 10, Text: "a", Due: &task.DueTime{Hour: 8}}))
	require.NoError(t, store.InsertTask(ctx, task.Task{ID: 2, Owner: 11, Text: "b"}))

	report, err := store.Maintain(ctx)
	require.NoError(t, err)
	assert.True(t, report.Healthy())
	assert.Equal(t, 2, report.Tasks)
	assert.Equal(t, 2, report.Owners)

	insertRawTask(t, db, 3, "25:00")
	report, err = store.Maintain(ctx)
	require.NoError(t, err)
	assert.False(t, report.Healthy())
	assert.Equal(t, []int64{3}, report.CorruptIDs)
	assert.Equal(t, "ok", report.Integrity)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Maintain(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractDBNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain path", input: "storage.db", want: "storage.db"},
		{name: "file prefix", input: "file:storage.db", want: "storage.db"},
		{name: "query parameters", input: "file:storage.db?_pragma=busy_timeout(5000)", want: "storage.db"},
		{name: "escaped path", input: "my%20tasks.db", want: "my tasks.db"},
	}
	for _, tc := range tests {
		tc := tc // per-iteration copy for go < 1.22 loop semantics
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExtractDBNameFromPath(tc.input))
		})
	}
}
