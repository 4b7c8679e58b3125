package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTaskHandler returns the handler that feeds every other text message into
// the task dialog. It is installed as the bot's default handler.
func NewTaskHandler(deps HandlerDeps) bot.HandlerFunc {
	return taskHandler{deps}.Handle
}

type taskHandler struct {
	deps HandlerDeps
}

func (h taskHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "task")

	if update.Message == nil || update.Message.From == nil {
		log.DebugContext(ctx, "Ignoring update without message or sender", "update_id", update.ID)
		return
	}
	if update.Message.Text == "" {
		log.DebugContext(ctx, "Ignoring non-text message", "chat_id", update.Message.Chat.ID)
		return
	}

	reply := h.deps.Dialog.Respond(ctx, update.Message.From.ID, update.Message.Text)
	sendReply(ctx, b, log, update.Message.Chat.ID, reply, h.deps.Config.Messages.Menu)
}
