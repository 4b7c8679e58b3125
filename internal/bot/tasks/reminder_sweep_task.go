package tasks

import (
	"context"
	"fmt"
	"time"
)

// newReminderSweepTask re-arms every task with a due time but no pending
// reminder. After a reminder fires this arms the next day's occurrence.
func newReminderSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "reminder_sweep")

	return func(ctx context.Context) error {
		startTime := time.Now()

		armed, err := deps.Reminders.RecoverReminders(ctx)
		duration := time.Since(startTime)
		if err != nil {
			log.ErrorContext(ctx, "Reminder sweep failed", "error", err, "armed", armed, "duration", duration)
			return fmt.Errorf("reminder sweep failed: %w", err)
		}

		if armed > 0 {
			log.InfoContext(ctx, "Reminder sweep armed reminders", "armed", armed, "duration", duration)
		} else {
			log.DebugContext(ctx, "Reminder sweep found nothing to arm", "duration", duration)
		}
		return nil
	}
}
