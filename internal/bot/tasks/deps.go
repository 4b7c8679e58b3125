// Package tasks implements the periodic jobs of the reminder bot together with
// their dependencies and registration table.
package tasks

import (
	"context"
	"log/slog"

	"github.com/edgard/remindbot/internal/database"
)

// ReminderRecoverer re-arms reminders that have no pending handle.
type ReminderRecoverer interface {
	RecoverReminders(ctx context.Context) (int, error)
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger    *slog.Logger
	Store     database.Store
	Reminders ReminderRecoverer
}
