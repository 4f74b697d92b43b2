package adapter

import (
	"context"

	"telegram-voice-translator/internal/domain/model"
)

// SendDocumentParams carries a translated document back to the chat.
type SendDocumentParams struct {
	ChatID    int64
	FileName  string
	Bytes     []byte
	Caption   string
	InReplyTo int
}

// TelegramBotAdapter is the outbound port to the chat transport.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string, inReplyTo int) error
	SendVoice(ctx context.Context, chatID int64, voice []byte, fileName, caption string, inReplyTo int) error
	SendDocument(ctx context.Context, p SendDocumentParams) error
	SendTyping(ctx context.Context, chatID int64) error

	// DownloadFile resolves a file_id to raw bytes. Voice payloads expire on
	// Telegram's side, so callers must be prepared for ErrResourceExpired.
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// ReplySender delivers terminal pipeline artifacts with its own retry policy.
type ReplySender interface {
	Send(ctx context.Context, reply model.Reply) error
}
