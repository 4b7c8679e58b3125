// Package task defines the to-do item model, the HH:MM due time format, the
// error taxonomy shared by the core, and the in-memory TaskStore.
package task

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// dueTimeFormat matches the zero-padded 24-hour wire format, e.g. "09:05".
var dueTimeFormat = regexp.MustCompile(`^([0-9]{2}):([0-9]{2})$`)

// DueTime is a wall-clock time of day without a date.
type DueTime struct {
	Hour   int
	Minute int
}

// ParseDueTime parses the literal HH:MM format (00:00 to 23:59).
// Anything else, including "9:05" or "24:00", yields ErrInvalidTime.
func ParseDueTime(s string) (DueTime, error) {
	m := dueTimeFormat.FindStringSubmatch(s)
	if m == nil {
		return DueTime{}, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidTime, s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return DueTime{}, fmt.Errorf("%w: %q is out of range", ErrInvalidTime, s)
	}
	return DueTime{Hour: hour, Minute: minute}, nil
}

// String renders the due time in HH:MM form.
func (d DueTime) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

// On returns the instant the due time falls on for the calendar day of ref,
// in ref's location.
func (d DueTime) On(ref time.Time) time.Time {
	y, m, day := ref.Date()
	return time.Date(y, m, day, d.Hour, d.Minute, 0, 0, ref.Location())
}

// Task is a user-owned to-do item.
type Task struct {
	ID    int64
	Owner int64
	Text  string
	// Due is nil when the task has no reminder.
	Due *DueTime
}

// HasDue reports whether the task carries a due time.
func (t Task) HasDue() bool {
	return t.Due != nil
}

// DueString returns the due time as HH:MM, or "" when absent.
func (t Task) DueString() string {
	if t.Due == nil {
		return ""
	}
	return t.Due.String()
}

func (t Task) clone() Task {
	if t.Due != nil {
		d := *t.Due
		t.Due = &d
	}
	return t
}
