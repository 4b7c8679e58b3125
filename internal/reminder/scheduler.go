package reminder

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/remindbot/internal/task"
)

// DefaultDeliveryTimeout bounds a single Notifier call.
const DefaultDeliveryTimeout = 10 * time.Second

// Notifier delivers a reminder text to its owner. Implementations must return
// once ctx is done.
type Notifier interface {
	Deliver(ctx context.Context, owner int64, text string) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, owner int64, text string) error

// Deliver calls f.
func (f NotifierFunc) Deliver(ctx context.Context, owner int64, text string) error {
	return f(ctx, owner, text)
}

// Status is the lifecycle state of a handle.
type Status int

const (
	// StatusPending handles are waiting for their timer.
	StatusPending Status = iota
	// StatusFired handles reached their fire instant. Terminal.
	StatusFired
	// StatusCancelled handles were cancelled before firing. Terminal.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFired:
		return "fired"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Reminder is a snapshot of a pending handle.
type Reminder struct {
	// Seq identifies the handle; every Arm creates a new one.
	Seq    uint64
	TaskID int64
	Owner  int64
	Text   string
	FireAt time.Time
}

type handle struct {
	Reminder
	status Status
	timer  clockwork.Timer
}

// Options configures a Scheduler.
type Options struct {
	Clock           clockwork.Clock
	Notifier        Notifier
	Logger          *slog.Logger
	Lead            time.Duration
	DeliveryTimeout time.Duration
	// Format turns task text into the delivered message. Defaults to the text
	// unchanged.
	Format func(text string) string
}

// Scheduler owns the task id to pending handle map. A task has at most one
// pending handle. A handle's status is only changed under mu, so fired and
// cancelled are mutually exclusive.
type Scheduler struct {
	mu       sync.Mutex
	handles  map[int64]*handle
	seq      uint64
	stopped  bool
	inflight sync.WaitGroup

	clock           clockwork.Clock
	notifier        Notifier
	logger          *slog.Logger
	lead            time.Duration
	deliveryTimeout time.Duration
	format          func(string) string
}

// NewScheduler creates a scheduler. Zero option values take defaults.
func NewScheduler(opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Lead <= 0 {
		opts.Lead = DefaultLead
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = DefaultDeliveryTimeout
	}
	if opts.Format == nil {
		opts.Format = func(text string) string { return text }
	}
	if opts.Notifier == nil {
		log := opts.Logger
		opts.Notifier = NotifierFunc(func(ctx context.Context, owner int64, text string) error {
			log.WarnContext(ctx, "No notifier configured, dropping reminder", "owner", owner)
			return nil
		})
	}
	return &Scheduler{
		handles:         make(map[int64]*handle),
		clock:           opts.Clock,
		notifier:        opts.Notifier,
		logger:          opts.Logger.With("component", "reminder_scheduler"),
		lead:            opts.Lead,
		deliveryTimeout: opts.DeliveryTimeout,
		format:          opts.Format,
	}
}

// Arm cancels any pending handle for taskID and, if the resolved fire instant
// is after now, schedules a new one that delivers text to owner exactly once.
// After Stop nothing is scheduled and a due task reports TooSoon.
func (s *Scheduler) Arm(taskID, owner int64, text string, due *task.DueTime, now time.Time) ArmResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(taskID)

	if due == nil {
		return ArmResult{Outcome: NoTime}
	}
	fireAt, ok := FireInstant(*due, now, s.lead)
	if !ok {
		s.logger.Debug("Reminder not armed, fire instant already passed",
			"task_id", taskID, "due", due.String(), "fire_at", fireAt)
		return ArmResult{Outcome: TooSoon, FireAt: fireAt}
	}
	if s.stopped {
		s.logger.Warn("Scheduler stopped, reminder not armed", "task_id", taskID)
		return ArmResult{Outcome: TooSoon, FireAt: fireAt}
	}

	s.seq++
	h := &handle{
		Reminder: Reminder{
			Seq:    s.seq,
			TaskID: taskID,
			Owner:  owner,
			Text:   text,
			FireAt: fireAt,
		},
		status: StatusPending,
	}
	h.timer = s.clock.AfterFunc(fireAt.Sub(now), func() { s.fire(h) })
	s.handles[taskID] = h

	s.logger.Info("Reminder armed",
		"task_id", taskID, "owner", owner, "seq", h.Seq, "fire_at", fireAt, "in", fireAt.Sub(now))
	return ArmResult{Outcome: Scheduled, FireAt: fireAt}
}

// Cancel removes the pending handle for taskID. It reports whether one existed.
func (s *Scheduler) Cancel(taskID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancelLocked(taskID)
}

func (s *Scheduler) cancelLocked(taskID int64) bool {
	h, ok := s.handles[taskID]
	if !ok {
		return false
	}
	h.status = StatusCancelled
	h.timer.Stop()
	delete(s.handles, taskID)
	s.logger.Debug("Reminder cancelled", "task_id", taskID, "seq", h.Seq)
	return true
}

// IsPending reports whether taskID has a pending handle.
func (s *Scheduler) IsPending(taskID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.handles[taskID]
	return ok
}

// Pending returns a snapshot of the pending handle for taskID.
func (s *Scheduler) Pending(taskID int64) (Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.handles[taskID]
	if !ok {
		return Reminder{}, false
	}
	return h.Reminder, true
}

// PendingForOwner returns the subset of taskIDs that have a pending handle
// belonging to owner.
func (s *Scheduler) PendingForOwner(owner int64, taskIDs []int64) map[int64]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64]struct{})
	for _, id := range taskIDs {
		if h, ok := s.handles[id]; ok && h.Owner == owner {
			out[id] = struct{}{}
		}
	}
	return out
}

// Len returns the number of pending handles.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.handles)
}

// Stop cancels every pending handle, refuses further arming and waits for
// deliveries already in progress.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	cancelled := 0
	for id := range s.handles {
		if s.cancelLocked(id) {
			cancelled++
		}
	}
	s.mu.Unlock()

	s.inflight.Wait()
	s.logger.Info("Reminder scheduler stopped", "cancelled", cancelled)
}

func (s *Scheduler) fire(h *handle) {
	s.mu.Lock()
	if h.status != StatusPending {
		s.mu.Unlock()
		return
	}
	h.status = StatusFired
	if s.handles[h.TaskID] == h {
		delete(s.handles, h.TaskID)
	}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.deliveryTimeout)
	defer cancel()

	log := s.logger.With("task_id", h.TaskID, "owner", h.Owner, "seq", h.Seq)
	startTime := time.Now()
	if err := s.notifier.Deliver(ctx, h.Owner, s.format(h.Text)); err != nil {
		log.ErrorContext(ctx, "Reminder delivery failed, not retrying", "error", err, "duration", time.Since(startTime))
		return
	}
	log.InfoContext(ctx, "Reminder delivered", "duration", time.Since(startTime))
}
