package service

import (
	"context"
	"time"
)

// RecoverReminders arms a reminder for every task that has a due time but no
// pending reminder. It runs once at startup, after the store is loaded and
// before requests are accepted, and then periodically as a repair sweep.
// It returns how many reminders were armed.
func (s *Service) RecoverReminders(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	startTime := time.Now()
	armed, tooSoon := 0, 0
	for _, t := range s.store.All() {
		if err := ctx.Err(); err != nil {
			s.logger.WarnContext(ctx, "Reminder recovery interrupted", "armed", armed, "error", err)
			return armed, err
		}
		if !t.HasDue() || s.reminders.IsPending(t.ID) {
			continue
		}
		res := s.reminders.Arm(t.ID, t.Owner, t.Text, t.Due, s.clock.Now())
		if res.Scheduled() {
			armed++
		} else {
			tooSoon++
		}
	}

	if armed > 0 {
		s.logger.InfoContext(ctx, "Reminders recovered", "armed", armed, "too_soon", tooSoon, "duration", time.Since(startTime))
	} else {
		s.logger.DebugContext(ctx, "Reminder recovery found nothing to arm", "too_soon", tooSoon)
	}
	return armed, nil
}
