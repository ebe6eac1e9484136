package adapter

import "context"

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// TelegramBotAdapter is the outbound messaging port. Chat ids are the
// platform's numeric ids; the usecase layer converts from the string ids it
// stores.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error
	// CopyMessage re-sends a message without the forwarded-from header.
	CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error
	// ForwardMessage keeps the original sender header visible.
	ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error
}
