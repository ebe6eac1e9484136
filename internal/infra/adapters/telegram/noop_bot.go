package telegram

import (
	"context"
	"log"
	"time"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev runs.
// It logs outbound messages instead of calling Telegram.
type NoopBotAdapter struct{}

func NewNoopBotAdapter() *NoopBotAdapter {
	return &NoopBotAdapter{}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	log.Printf("[noop-telegram] To %d: %s\n", chatID, text)
	return nil
}

func (b *NoopBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	log.Printf("[noop-telegram] To %d: %s [buttons: %v]\n", chatID, text, rows)
	return nil
}

func (b *NoopBotAdapter) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	log.Printf("[noop-telegram] Photo %s to %d: %s\n", fileID, chatID, caption)
	return nil
}

func (b *NoopBotAdapter) CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	log.Printf("[noop-telegram] Copy message %d from %d to %d\n", messageID, fromChatID, toChatID)
	return nil
}

func (b *NoopBotAdapter) ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	log.Printf("[noop-telegram] Forward message %d from %d to %d\n", messageID, fromChatID, toChatID)
	return nil
}
