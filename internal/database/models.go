package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/edgard/remindbot/internal/task"
)

// taskRow is the persisted form of a task.Task. DueTime holds HH:MM or NULL.
type taskRow struct {
	ID        int64          `db:"id"`
	Owner     int64          `db:"owner"`
	Text      string         `db:"text"`
	DueTime   sql.NullString `db:"due_time"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func rowFromTask(t task.Task, now time.Time) taskRow {
	r := taskRow{
		ID:        t.ID,
		Owner:     t.Owner,
		Text:      t.Text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if t.Due != nil {
		r.DueTime = sql.NullString{String: t.Due.String(), Valid: true}
	}
	return r
}

func (r taskRow) toTask() (task.Task, error) {
	t := task.Task{ID: r.ID, Owner: r.Owner, Text: r.Text}
	if r.DueTime.Valid {
		d, err := task.ParseDueTime(r.DueTime.String)
		if err != nil {
			return task.Task{}, fmt.Errorf("task %d has corrupt due_time: %w", r.ID, err)
		}
		t.Due = &d
	}
	return t, nil
}
