package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultDBPath = "storage.db"

	DefaultReminderLead            = time.Hour
	DefaultReminderDeliveryTimeout = 10 * time.Second

	// Cron expressions include a leading seconds field.
	DefaultReminderSweepSchedule  = "0 * * * * *"
	DefaultSQLMaintenanceSchedule = "0 0 4 * * *"
)

// DefaultMessages are the texts used when config.yaml does not override them.
var DefaultMessages = MessagesConfig{
	Welcome:             "👋 Hi! I keep your to-do list and remind you an hour before each task.",
	Help:                "Use the buttons below or the commands /add, /list, /edit, /delete, /reminders.\nAdd a time with a bar: Call mom | 18:00",
	Menu:                "Choose an action:",
	EnterTask:           "Send the task as: <text> | <HH:MM>\n\nExamples:\nCall mom | 18:00\nDo homework | 20:30\nBuy bread (no time)",
	EnterDeletePosition: "Send the number of the task to delete:",
	EnterEditPosition:   "Send the number of the task to edit:",
	EmptyText:           "Task text cannot be empty!",
	InvalidTime:         "Invalid time! Use HH:MM, for example 14:30.",
	InvalidNumber:       "Invalid number. Please try again.",
	NoTasks:             "You have no tasks yet.",
	NoReminders:         "You have no active reminders.",
	TaskListHeader:      "Your tasks:",
	ReminderListHeader:  "🔔 Your active reminders:",
	TaskAdded:           "Task added",
	TaskUpdated:         "Task updated",
	TaskDeleted:         "Task deleted.",
	CurrentTask:         "Current task: %s\nCurrent time: %s",
	ReminderSet:         "✅ Reminder set for %s",
	ReminderTooSoon:     "⚠️ Reminder not set: the time is too close",
	ReminderNoTime:      "⚠️ Reminder not set: the task has no time",
	Reminder:            "⏰ Reminder: in {lead} you have a task: \"%s\"",
	GeneralError:        "❌ An error occurred. Please try again later.",
}
