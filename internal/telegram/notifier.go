package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ErrNoSender is returned by Deliver before a sender is attached.
var ErrNoSender = errors.New("telegram notifier has no sender")

// Sender is the part of *bot.Bot the notifier needs.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Notifier delivers reminders as private Telegram messages. The owner id is
// the Telegram user id, which is also the id of the private chat with the bot.
type Notifier struct {
	mu     sync.RWMutex
	sender Sender
}

// NewNotifier creates a Notifier sending through s. s may be nil and attached
// later with SetSender.
func NewNotifier(s Sender) *Notifier {
	return &Notifier{sender: s}
}

// SetSender attaches the sender used by Deliver.
func (n *Notifier) SetSender(s Sender) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sender = s
}

// Deliver sends text to owner. The caller bounds the send with ctx.
func (n *Notifier) Deliver(ctx context.Context, owner int64, text string) error {
	n.mu.RLock()
	s := n.sender
	n.mu.RUnlock()
	if s == nil {
		return ErrNoSender
	}

	if _, err := s.SendMessage(ctx, &bot.SendMessageParams{ChatID: owner, Text: text}); err != nil {
		return fmt.Errorf("failed to send reminder to %d: %w", owner, err)
	}
	return nil
}
