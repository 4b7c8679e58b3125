package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadConfig loads and validates configuration from, in increasing priority:
//  1. built-in defaults
//  2. the YAML file at path (optional)
//  3. a .env file in the working directory (optional)
//  4. BOT_* environment variables, plus TOKEN for the Telegram token
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to read .env file: %v", ErrConfiguration, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("telegram.token", "BOT_TELEGRAM_TOKEN", "TOKEN"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read config file %s: %v", ErrConfiguration, path, err)
		}
		slog.Info("Configuration file not found, using defaults and environment", "path", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

// setDefaults sets default values for optional configuration parameters.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("reminder.lead", DefaultReminderLead)
	v.SetDefault("reminder.delivery_timeout", DefaultReminderDeliveryTimeout)

	v.SetDefault("scheduler.tasks.reminder_sweep.enabled", true)
	v.SetDefault("scheduler.tasks.reminder_sweep.schedule", DefaultReminderSweepSchedule)
	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", DefaultSQLMaintenanceSchedule)

	m := DefaultMessages
	v.SetDefault("messages.welcome", m.Welcome)
	v.SetDefault("messages.help", m.Help)
	v.SetDefault("messages.menu", m.Menu)
	v.SetDefault("messages.enter_task", m.EnterTask)
	v.SetDefault("messages.enter_delete_position", m.EnterDeletePosition)
	v.SetDefault("messages.enter_edit_position", m.EnterEditPosition)
	v.SetDefault("messages.empty_text", m.EmptyText)
	v.SetDefault("messages.invalid_time", m.InvalidTime)
	v.SetDefault("messages.invalid_number", m.InvalidNumber)
	v.SetDefault("messages.no_tasks", m.NoTasks)
	v.SetDefault("messages.no_reminders", m.NoReminders)
	v.SetDefault("messages.task_list_header", m.TaskListHeader)
	v.SetDefault("messages.reminder_list_header", m.ReminderListHeader)
	v.SetDefault("messages.task_added", m.TaskAdded)
	v.SetDefault("messages.task_updated", m.TaskUpdated)
	v.SetDefault("messages.task_deleted", m.TaskDeleted)
	v.SetDefault("messages.current_task", m.CurrentTask)
	v.SetDefault("messages.reminder_set", m.ReminderSet)
	v.SetDefault("messages.reminder_too_soon", m.ReminderTooSoon)
	v.SetDefault("messages.reminder_no_time", m.ReminderNoTime)
	v.SetDefault("messages.reminder", m.Reminder)
	v.SetDefault("messages.general_error", m.GeneralError)
}
