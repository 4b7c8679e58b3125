package task

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for an empty task text.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTime is returned for a due time that is not HH:MM.
	ErrInvalidTime = errors.New("invalid time")
	// ErrNotFound is returned when a task id does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrOutOfRange is matched by every SelectionError.
	ErrOutOfRange = errors.New("position out of range")
)

// SelectionError reports a 1-based position that does not resolve against the
// owner's current task listing.
type SelectionError struct {
	Position int
	Count    int
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("position %d out of range (owner has %d tasks)", e.Position, e.Count)
}

// Is makes errors.Is(err, ErrOutOfRange) hold for any SelectionError.
func (e *SelectionError) Is(target error) bool {
	return target == ErrOutOfRange
}
