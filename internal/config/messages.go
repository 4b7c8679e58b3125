package config

import (
	"fmt"
	"strings"
	"time"
)

// ReminderText renders the Reminder message for a task, filling {lead} with
// the configured lead time.
func (m MessagesConfig) ReminderText(lead time.Duration, text string) string {
	msg := strings.ReplaceAll(m.Reminder, "{lead}", humanizeLead(lead))
	if !strings.Contains(msg, "%s") {
		return msg + " " + text
	}
	return fmt.Sprintf(msg, text)
}

// humanizeLead spells a lead time in hours and minutes, e.g. "1 hour 30 minutes".
func humanizeLead(d time.Duration) string {
	d = d.Round(time.Minute)
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)

	var parts []string
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 || hours == 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
