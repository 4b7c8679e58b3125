// Package config provides configuration loading, validation, and management
// for the reminder bot. It reads a YAML file, a .env file and BOT_* environment
// variables on top of built-in defaults.
package config

import (
	"errors"
	"time"

	"github.com/go-telegram/bot/models"
)

// ErrConfiguration wraps every configuration loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration parameters for all components.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Reminder  ReminderConfig  `mapstructure:"reminder"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls slog output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials. BotInfo is filled at runtime.
type TelegramConfig struct {
	Token   string       `mapstructure:"token" validate:"required"`
	BotInfo *models.User `mapstructure:"-"`
}

// DatabaseConfig points at the sqlite file holding task records.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ReminderConfig controls reminder timing.
type ReminderConfig struct {
	// Lead is how long before the due time a reminder fires.
	Lead            time.Duration `mapstructure:"lead"             validate:"min=1m,max=24h"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout" validate:"min=1s,max=5m"`
}

// SchedulerConfig lists the periodic jobs by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a periodic job and gives its cron schedule (with seconds).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds every user-facing text of the Telegram front end.
type MessagesConfig struct {
	Welcome             string `mapstructure:"welcome"               validate:"required"`
	Help                string `mapstructure:"help"                  validate:"required"`
	Menu                string `mapstructure:"menu"                  validate:"required"`
	EnterTask           string `mapstructure:"enter_task"            validate:"required"`
	EnterDeletePosition string `mapstructure:"enter_delete_position" validate:"required"`
	EnterEditPosition   string `mapstructure:"enter_edit_position"   validate:"required"`
	EmptyText           string `mapstructure:"empty_text"            validate:"required"`
	InvalidTime         string `mapstructure:"invalid_time"          validate:"required"`
	InvalidNumber       string `mapstructure:"invalid_number"        validate:"required"`
	NoTasks             string `mapstructure:"no_tasks"              validate:"required"`
	NoReminders         string `mapstructure:"no_reminders"          validate:"required"`
	TaskListHeader      string `mapstructure:"task_list_header"      validate:"required"`
	ReminderListHeader  string `mapstructure:"reminder_list_header"  validate:"required"`
	TaskAdded           string `mapstructure:"task_added"            validate:"required"`
	TaskUpdated         string `mapstructure:"task_updated"          validate:"required"`
	TaskDeleted         string `mapstructure:"task_deleted"          validate:"required"`
	CurrentTask         string `mapstructure:"current_task"          validate:"required"`
	ReminderSet         string `mapstructure:"reminder_set"          validate:"required"`
	ReminderTooSoon     string `mapstructure:"reminder_too_soon"     validate:"required"`
	ReminderNoTime      string `mapstructure:"reminder_no_time"      validate:"required"`
	// Reminder is the delivered text. {lead} becomes reminder.lead in words and
	// %s the task text.
	Reminder            string `mapstructure:"reminder"              validate:"required"`
	GeneralError        string `mapstructure:"general_error"         validate:"required"`
}
