package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/remindbot/internal/task"
)

// Store defines the interface for database operations.
// Methods should accept context.Context for cancellation and timeouts.
type Store interface {
	task.Persister

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// Maintain checks the tasks table for rows that cannot be loaded, runs
	// the sqlite integrity check and then VACUUM.
	Maintain(ctx context.Context) (MaintenanceReport, error)
}

// MaintenanceReport summarizes one Maintain run.
type MaintenanceReport struct {
	Tasks      int
	Owners     int
	CorruptIDs []int64
	Integrity  string
	Duration   time.Duration
}

// Healthy reports whether every task row is loadable and sqlite found no damage.
func (r MaintenanceReport) Healthy() bool {
	return len(r.CorruptIDs) == 0 && r.Integrity == "ok"
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// LoadTasks returns every persisted task ordered by id.
func (s *sqlxStore) LoadTasks(ctx context.Context) ([]task.Task, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var rows []taskRow
	query := `
        SELECT id, owner, text, due_time
        FROM tasks
        ORDER BY id ASC;
    `
	err := s.db.SelectContext(ctx, &rows, query)
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while loading tasks", "error", err)
		return nil, err
	case err != nil:
		s.logger.ErrorContext(ctx, "Error loading tasks", "error", err)
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.toTask()
		if err != nil {
			s.logger.ErrorContext(ctx, "Unreadable task row, refusing to load", "task_id", r.ID, "error", err)
			return nil, fmt.Errorf("failed to load tasks: %w", err)
		}
		tasks = append(tasks, t)
	}

	s.logger.DebugContext(ctx, "Loaded tasks", "count", len(tasks))
	return tasks, nil
}

// InsertTask stores a new task row with its caller-assigned id.
func (s *sqlxStore) InsertTask(ctx context.Context, t task.Task) error {
	if t.ID <= 0 {
		return fmt.Errorf("task must have a positive id")
	}
	if t.Owner == 0 {
		return fmt.Errorf("task must have a non-zero owner")
	}

	row := rowFromTask(t, time.Now().UTC())
	query := `
        INSERT INTO tasks (id, owner, text, due_time, created_at, updated_at)
        VALUES (:id, :owner, :text, :due_time, :created_at, :updated_at);
    `
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		s.logger.ErrorContext(ctx, "Error inserting task", "task_id", t.ID, "owner", t.Owner, "error", err)
		return fmt.Errorf("failed to insert task %d: %w", t.ID, err)
	}

	s.logger.DebugContext(ctx, "Task inserted", "task_id", t.ID, "owner", t.Owner)
	return nil
}

// UpdateTask rewrites the text and due time of an existing task.
func (s *sqlxStore) UpdateTask(ctx context.Context, t task.Task) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for task update", "task_id", t.ID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	row := rowFromTask(t, time.Now().UTC())
	query := `
        UPDATE tasks SET
            text = :text,
            due_time = :due_time,
            updated_at = :updated_at
        WHERE id = :id;
    `
	result, err := tx.NamedExecContext(ctx, query, row)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating task", "task_id", t.ID, "error", err)
		return fmt.Errorf("failed to update task %d: %w", t.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count when updating task", "task_id", t.ID, "error", err)
	} else if affected != 1 {
		return fmt.Errorf("failed to update task %d: %w", t.ID, task.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "task_id", t.ID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Task updated", "task_id", t.ID)
	return nil
}

// DeleteTask removes a task row. Deleting a missing row is not an error.
func (s *sqlxStore) DeleteTask(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting task", "task_id", id, "error", err)
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}

	count, _ := result.RowsAffected()
	s.logger.DebugContext(ctx, "Task deleted", "task_id", id, "affected", count)
	return nil
}

// Maintain checks every task row, runs PRAGMA integrity_check and VACUUM.
// Rows whose due_time does not parse are reported, not modified, so Load
// failures can be traced to a row id.
func (s *sqlxStore) Maintain(ctx context.Context) (MaintenanceReport, error) {
	var report MaintenanceReport
	if ctx.Err() != nil {
		return report, ctx.Err()
	}
	startTime := time.Now()

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, owner, text, due_time FROM tasks ORDER BY id ASC;`); err != nil {
		return report, fmt.Errorf("failed to scan tasks: %w", err)
	}
	owners := make(map[int64]struct{})
	for _, r := range rows {
		owners[r.Owner] = struct{}{}
		if _, err := r.toTask(); err != nil {
			s.logger.WarnContext(ctx, "Unreadable task row", "task_id", r.ID, "due_time", r.DueTime.String, "error", err)
			report.CorruptIDs = append(report.CorruptIDs, r.ID)
		}
	}
	report.Tasks = len(rows)
	report.Owners = len(owners)

	if err := s.db.GetContext(ctx, &report.Integrity, `PRAGMA integrity_check;`); err != nil {
		return report, fmt.Errorf("failed to run integrity check: %w", err)
	}

	// VACUUM cannot run inside a transaction.
	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return report, err
		}
		return report, fmt.Errorf("failed to run VACUUM: %w", err)
	}

	report.Duration = time.Since(startTime)
	s.logger.DebugContext(ctx, "Database maintenance finished",
		"tasks", report.Tasks, "corrupt", len(report.CorruptIDs), "integrity", report.Integrity, "duration", report.Duration)
	return report, nil
}
