package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/edgard/remindbot/internal/config"
	"github.com/edgard/remindbot/internal/reminder"
	"github.com/edgard/remindbot/internal/service"
	"github.com/edgard/remindbot/internal/task"
)

// parseTaskInput splits "text | HH:MM" into its parts. A missing or blank time
// part yields an empty due. The time part is not validated here.
func parseTaskInput(input string) (text, due string) {
	input = strings.TrimSpace(input)
	text, due, found := strings.Cut(input, "|")
	if !found {
		return input, ""
	}
	return strings.TrimSpace(text), strings.TrimSpace(due)
}

// parsePosition reads a 1-based list position typed by the user.
func parsePosition(input string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, false
	}
	return n, true
}

func formatEntry(e service.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s", e.Position, e.Task.Text)
	if e.Task.HasDue() {
		b.WriteString(" ⏰ ")
		b.WriteString(e.Task.DueString())
		if e.HasReminder {
			b.WriteString(" 🔔")
		}
	}
	return b.String()
}

func formatEntries(header string, entries []service.Entry) string {
	lines := make([]string, 0, len(entries)+1)
	if header != "" {
		lines = append(lines, header)
	}
	for _, e := range entries {
		lines = append(lines, formatEntry(e))
	}
	return strings.Join(lines, "\n")
}

// formatSaved renders the confirmation for an added or edited task together
// with what happened to its reminder.
func formatSaved(msgs config.MessagesConfig, prefix string, res service.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: '%s'", prefix, res.Task.Text)
	if res.Task.HasDue() {
		fmt.Fprintf(&b, " ⏰ %s", res.Task.DueString())
	}
	b.WriteString("\n")

	switch res.Arm.Outcome {
	case reminder.Scheduled:
		fmt.Fprintf(&b, msgs.ReminderSet, res.Arm.FireAt.Format("15:04"))
	case reminder.TooSoon:
		b.WriteString(msgs.ReminderTooSoon)
	case reminder.NoTime:
		b.WriteString(msgs.ReminderNoTime)
	}
	return b.String()
}

func formatCurrent(msgs config.MessagesConfig, t task.Task) string {
	due := t.DueString()
	if due == "" {
		due = "—"
	}
	return fmt.Sprintf(msgs.CurrentTask, t.Text, due)
}
