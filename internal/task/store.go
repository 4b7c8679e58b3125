package task

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Persister is the optional durable backing of a Store. Every mutation is
// written to it before being applied in memory.
type Persister interface {
	LoadTasks(ctx context.Context) ([]Task, error)
	InsertTask(ctx context.Context, t Task) error
	UpdateTask(ctx context.Context, t Task) error
	DeleteTask(ctx context.Context, id int64) error
}

// Patch describes a partial update. Nil fields are left unchanged; ClearDue
// removes the due time and takes precedence over Due.
type Patch struct {
	Text     *string
	Due      *DueTime
	ClearDue bool
}

// Store owns task records and the per-owner index. Ids are assigned from an
// internal monotonic counter and never reused while the process lives.
type Store struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	persister Persister

	nextID  int64
	tasks   map[int64]*Task
	order   []int64
	byOwner map[int64][]int64
}

// NewStore creates an empty store. persister may be nil for a purely
// in-memory store.
func NewStore(persister Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		logger:    logger.With("component", "task_store"),
		persister: persister,
		nextID:    1,
		tasks:     make(map[int64]*Task),
		byOwner:   make(map[int64][]int64),
	}
}

// Load replaces the in-memory state with the persisted tasks and resumes the
// id counter after the highest stored id.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	loaded, err := s.persister.LoadTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	slices.SortFunc(loaded, func(a, b Task) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make(map[int64]*Task, len(loaded))
	s.order = s.order[:0]
	s.byOwner = make(map[int64][]int64)
	s.nextID = 1
	for _, t := range loaded {
		t := t.clone()
		s.tasks[t.ID] = &t
		s.order = append(s.order, t.ID)
		s.byOwner[t.Owner] = append(s.byOwner[t.Owner], t.ID)
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	s.logger.InfoContext(ctx, "Loaded tasks", "count", len(loaded), "next_id", s.nextID)
	return nil
}

// Add stores a new task for owner and returns it with its assigned id.
func (s *Store) Add(ctx context.Context, owner int64, text string, due *DueTime) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, fmt.Errorf("%w: task text is empty", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Task{ID: s.nextID, Owner: owner, Text: text, Due: due}
	t = t.clone()
	if s.persister != nil {
		if err := s.persister.InsertTask(ctx, t); err != nil {
			return Task{}, fmt.Errorf("failed to persist task: %w", err)
		}
	}
	s.nextID++

	stored := t.clone()
	s.tasks[t.ID] = &stored
	s.order = append(s.order, t.ID)
	s.byOwner[owner] = append(s.byOwner[owner], t.ID)

	s.logger.DebugContext(ctx, "Task added", "task_id", t.ID, "owner", owner, "due", t.DueString())
	return t, nil
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id int64) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return t.clone(), nil
}

// ListByOwner returns the owner's tasks in creation order.
func (s *Store) ListByOwner(owner int64) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[owner]
	out := make([]Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.tasks[id].clone())
	}
	return out
}

// All returns every stored task in creation order.
func (s *Store) All() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id].clone())
	}
	return out
}

// Resolve maps a 1-based position in the owner's current listing to a task.
// The listing is read at call time, never cached.
func (s *Store) Resolve(owner int64, position int) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[owner]
	if position < 1 || position > len(ids) {
		return Task{}, &SelectionError{Position: position, Count: len(ids)}
	}
	return s.tasks[ids[position-1]].clone(), nil
}

// Update applies p to the task with the given id and returns the result.
func (s *Store) Update(ctx context.Context, id int64, p Patch) (Task, error) {
	var text string
	if p.Text != nil {
		text = strings.TrimSpace(*p.Text)
		if text == "" {
			return Task{}, fmt.Errorf("%w: task text is empty", ErrInvalidInput)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	next := cur.clone()
	if p.Text != nil {
		next.Text = text
	}
	switch {
	case p.ClearDue:
		next.Due = nil
	case p.Due != nil:
		d := *p.Due
		next.Due = &d
	}

	if s.persister != nil {
		if err := s.persister.UpdateTask(ctx, next); err != nil {
			return Task{}, fmt.Errorf("failed to persist task update: %w", err)
		}
	}
	*cur = next

	s.logger.DebugContext(ctx, "Task updated", "task_id", id, "due", next.DueString())
	return next.clone(), nil
}

// Remove deletes the task. It reports false, without error, when the id is
// absent.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return false, nil
	}
	if s.persister != nil {
		if err := s.persister.DeleteTask(ctx, id); err != nil {
			return false, fmt.Errorf("failed to persist task removal: %w", err)
		}
	}

	delete(s.tasks, id)
	s.order = slices.DeleteFunc(s.order, func(v int64) bool { return v == id })
	ids := slices.DeleteFunc(s.byOwner[t.Owner], func(v int64) bool { return v == id })
	if len(ids) == 0 {
		delete(s.byOwner, t.Owner)
	} else {
		s.byOwner[t.Owner] = ids
	}

	s.logger.DebugContext(ctx, "Task removed", "task_id", id, "owner", t.Owner)
	return true, nil
}
