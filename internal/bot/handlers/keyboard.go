package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func menuKeyboard(placeholder string) *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: ButtonAdd}, {Text: ButtonList}},
			{{Text: ButtonEdit}, {Text: ButtonDelete}},
			{{Text: ButtonReminders}},
		},
		ResizeKeyboard:        true,
		InputFieldPlaceholder: placeholder,
	}
}

func replyMarkup(k Keyboard, placeholder string) models.ReplyMarkup {
	switch k {
	case KeyboardMenu:
		return menuKeyboard(placeholder)
	case KeyboardRemove:
		return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	return nil
}

// sendReply sends r to chatID with the markup it asks for.
func sendReply(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, r Reply, placeholder string) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: r.Text}
	if markup := replyMarkup(r.Keyboard, placeholder); markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
		return
	}
	log.DebugContext(ctx, "Reply sent", "chat_id", chatID)
}
