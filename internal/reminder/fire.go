// Package reminder arms, cancels and fires one-shot reminders ahead of task
// due times.
package reminder

import (
	"time"

	"github.com/edgard/remindbot/internal/task"
)

// DefaultLead is how long before the due time a reminder fires.
const DefaultLead = time.Hour

// Outcome is the result category of an Arm call.
type Outcome int

const (
	// NoTime means the task has no due time, so nothing was armed.
	NoTime Outcome = iota
	// TooSoon means the fire instant was not in the future.
	TooSoon
	// Scheduled means a pending reminder now exists.
	Scheduled
)

func (o Outcome) String() string {
	switch o {
	case NoTime:
		return "no_time"
	case TooSoon:
		return "too_soon"
	case Scheduled:
		return "scheduled"
	}
	return "unknown"
}

// ArmResult is returned by every Arm call. FireAt is set whenever a due time
// was present, even when the outcome is TooSoon.
type ArmResult struct {
	Outcome Outcome
	FireAt  time.Time
}

// Scheduled reports whether the reminder was armed.
func (r ArmResult) Scheduled() bool {
	return r.Outcome == Scheduled
}

// FireInstant resolves due against now. The due time is placed on now's day,
// rolled to the next day when it is not after now, and moved lead earlier.
// ok is false when the resulting instant is not after now.
func FireInstant(due task.DueTime, now time.Time, lead time.Duration) (fireAt time.Time, ok bool) {
	candidate := due.On(now)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	fireAt = candidate.Add(-lead)
	return fireAt, fireAt.After(now)
}
