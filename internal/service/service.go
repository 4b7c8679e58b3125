// Package service exposes the task operations used by input adapters. It keeps
// the task store and the reminder scheduler consistent on every mutation.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/remindbot/internal/reminder"
	"github.com/edgard/remindbot/internal/task"
)

// Result is returned by operations that leave a task in place.
type Result struct {
	Task task.Task
	Arm  reminder.ArmResult
}

// Entry is one line of an owner's listing.
type Entry struct {
	Position    int
	Task        task.Task
	HasReminder bool
}

// Service coordinates the task store and the reminder scheduler. All
// mutations of the pair are serialized by mu.
type Service struct {
	mu        sync.Mutex
	store     *task.Store
	reminders *reminder.Scheduler
	clock     clockwork.Clock
	logger    *slog.Logger
}

// New creates a Service over an already loaded store.
func New(store *task.Store, reminders *reminder.Scheduler, clock clockwork.Clock, logger *slog.Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:     store,
		reminders: reminders,
		clock:     clock,
		logger:    logger.With("component", "task_service"),
	}
}

// parseInput validates text and an optional HH:MM due string ("" means no
// due time) before anything is mutated.
func parseInput(text, due string) (string, *task.DueTime, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil, fmt.Errorf("%w: task text is empty", task.ErrInvalidInput)
	}
	if due == "" {
		return text, nil, nil
	}
	d, err := task.ParseDueTime(due)
	if err != nil {
		return "", nil, err
	}
	return text, &d, nil
}

// AddTask stores a new task for owner and arms its reminder when a due time is
// given. A TooSoon or NoTime outcome is not an error; the task is saved.
func (s *Service) AddTask(ctx context.Context, owner int64, text, due string) (Result, error) {
	text, dueTime, err := parseInput(text, due)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.Add(ctx, owner, text, dueTime)
	if err != nil {
		return Result{}, fmt.Errorf("failed to add task: %w", err)
	}
	arm := s.reminders.Arm(t.ID, t.Owner, t.Text, t.Due, s.clock.Now())

	s.logger.InfoContext(ctx, "Task added", "owner", owner, "task_id", t.ID, "due", t.DueString(), "arm", arm.Outcome.String())
	return Result{Task: t, Arm: arm}, nil
}

// EditTask replaces the text and due time of the task at the 1-based position
// in owner's current listing. An empty due clears the due time. The existing
// reminder is always cancelled and re-armed from the new values.
func (s *Service) EditTask(ctx context.Context, owner int64, position int, text, due string) (Result, error) {
	text, dueTime, err := parseInput(text, due)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.store.Resolve(owner, position)
	if err != nil {
		return Result{}, err
	}

	hadReminder := s.reminders.Cancel(cur.ID)
	updated, err := s.store.Update(ctx, cur.ID, task.Patch{Text: &text, Due: dueTime, ClearDue: dueTime == nil})
	if err != nil {
		if hadReminder {
			s.reminders.Arm(cur.ID, cur.Owner, cur.Text, cur.Due, s.clock.Now())
		}
		return Result{}, fmt.Errorf("failed to edit task: %w", err)
	}
	arm := s.reminders.Arm(updated.ID, updated.Owner, updated.Text, updated.Due, s.clock.Now())

	s.logger.InfoContext(ctx, "Task edited",
		"owner", owner, "task_id", updated.ID, "position", position, "due", updated.DueString(), "arm", arm.Outcome.String())
	return Result{Task: updated, Arm: arm}, nil
}

// DeleteTask removes the task at the 1-based position in owner's current
// listing together with its reminder.
func (s *Service) DeleteTask(ctx context.Context, owner int64, position int) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.store.Resolve(owner, position)
	if err != nil {
		return task.Task{}, err
	}

	hadReminder := s.reminders.Cancel(cur.ID)
	if _, err := s.store.Remove(ctx, cur.ID); err != nil {
		if hadReminder {
			s.reminders.Arm(cur.ID, cur.Owner, cur.Text, cur.Due, s.clock.Now())
		}
		return task.Task{}, fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.InfoContext(ctx, "Task deleted", "owner", owner, "task_id", cur.ID, "position", position)
	return cur, nil
}

// ListTasks returns owner's tasks in creation order with 1-based positions.
func (s *Service) ListTasks(owner int64) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.entriesLocked(owner, false)
}

// ListReminders returns owner's tasks that have a pending reminder. Positions
// refer to the full task listing.
func (s *Service) ListReminders(owner int64) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.entriesLocked(owner, true)
}

func (s *Service) entriesLocked(owner int64, pendingOnly bool) []Entry {
	tasks := s.store.ListByOwner(owner)
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	pending := s.reminders.PendingForOwner(owner, ids)

	entries := make([]Entry, 0, len(tasks))
	for i, t := range tasks {
		_, has := pending[t.ID]
		if pendingOnly && !has {
			continue
		}
		entries = append(entries, Entry{Position: i + 1, Task: t, HasReminder: has})
	}
	return entries
}
