package tasks

import (
	"context"
	"fmt"
)

// newMaintenanceTask checks the persisted tasks and compacts the database. A
// row that would stop the next startup from loading fails the run.
func newMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		report, err := deps.Store.Maintain(ctx)
		if err != nil {
			log.ErrorContext(ctx, "Database maintenance failed", "error", err)
			return fmt.Errorf("database maintenance failed: %w", err)
		}

		if !report.Healthy() {
			log.WarnContext(ctx, "Database maintenance found problems",
				"tasks", report.Tasks, "corrupt_task_ids", report.CorruptIDs, "integrity", report.Integrity)
			return fmt.Errorf("database unhealthy: %d unreadable task rows %v, integrity %q",
				len(report.CorruptIDs), report.CorruptIDs, report.Integrity)
		}

		log.InfoContext(ctx, "Database maintenance completed",
			"tasks", report.Tasks, "owners", report.Owners, "duration", report.Duration)
		return nil
	}
}
