// Package handlers contains the Telegram command handlers, the per-user task
// dialog behind them, and their registration table.
package handlers

import (
	"log/slog"

	"github.com/edgard/remindbot/internal/config"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Dialog *Dialog
}
