// Package main contains the entrypoint for the reminder bot.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/edgard/remindbot/internal/bot"
	"github.com/edgard/remindbot/internal/bot/handlers"
	"github.com/edgard/remindbot/internal/bot/tasks"
	"github.com/edgard/remindbot/internal/config"
	"github.com/edgard/remindbot/internal/database"
	"github.com/edgard/remindbot/internal/logger"
	"github.com/edgard/remindbot/internal/reminder"
	"github.com/edgard/remindbot/internal/service"
	"github.com/edgard/remindbot/internal/task"
	"github.com/edgard/remindbot/internal/telegram"
)

var Version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "remindbot",
		Short:         "Telegram bot keeping a to-do list with reminders before each task",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if code := run(ctx, configPath); code != 0 {
				return fmt.Errorf("exited with code %d", code)
			}
			return nil
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "./config.yaml", "Path to configuration file")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run wires config, logger, storage, reminders, the Telegram front end and the
// periodic jobs, then blocks until ctx is cancelled. It returns an exit code.
func run(ctx context.Context, configPath string) int {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	taskStore := task.NewStore(store, log)
	if err := taskStore.Load(ctx); err != nil {
		log.Error("Failed to load tasks", "error", err)
		return 1
	}

	clock := clockwork.NewRealClock()
	notifier := telegram.NewNotifier(nil)
	reminders := reminder.NewScheduler(reminder.Options{
		Clock:           clock,
		Notifier:        notifier,
		Logger:          log,
		Lead:            cfg.Reminder.Lead,
		DeliveryTimeout: cfg.Reminder.DeliveryTimeout,
		Format: func(text string) string {
			return cfg.Messages.ReminderText(cfg.Reminder.Lead, text)
		},
	})
	svc := service.New(taskStore, reminders, clock, log)

	hDeps := handlers.HandlerDeps{
		Logger: log,
		Config: cfg,
		Dialog: handlers.NewDialog(svc, cfg.Messages, log),
	}
	tDeps := tasks.TaskDeps{
		Logger:    log,
		Store:     store,
		Reminders: svc,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewTaskHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		reminders.Stop()
		return 1
	}
	notifier.SetSender(tg)

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		reminders.Stop()
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	armed, err := svc.RecoverReminders(ctx)
	if err != nil {
		log.Error("Failed to recover reminders", "error", err)
		reminders.Stop()
		return 1
	}
	log.Info("Recovered reminders", "armed", armed)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		reminders.Stop()
		return 1
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps), clock)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		reminders.Stop()
		return 1
	}
	app := bot.NewBot(log, tg, sched, reminders)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
