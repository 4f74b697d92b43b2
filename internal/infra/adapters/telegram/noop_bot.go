package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-voice-translator/internal/domain/ports/adapter"
	"telegram-voice-translator/internal/infra/logging"
)

// NoopBotAdapter logs instead of talking to Telegram. Used in dev mode and
// by wiring tests.
type NoopBotAdapter struct {
	log *zerolog.Logger
	dev bool
}

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

func NewNoopBotAdapter(log *zerolog.Logger, dev bool) *NoopBotAdapter {
	return &NoopBotAdapter{log: log, dev: dev}
}

func (n *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string, inReplyTo int) error {
	n.log.Info().Int64("chat_id", chatID).Int("in_reply_to", inReplyTo).
		Str("text", logging.Redact(text, n.dev)).Msg("noop: send message")
	return nil
}

func (n *NoopBotAdapter) SendVoice(ctx context.Context, chatID int64, voice []byte, fileName, caption string, inReplyTo int) error {
	n.log.Info().Int64("chat_id", chatID).Int("bytes", len(voice)).Str("file", fileName).Msg("noop: send voice")
	return nil
}

func (n *NoopBotAdapter) SendDocument(ctx context.Context, p adapter.SendDocumentParams) error {
	n.log.Info().Int64("chat_id", p.ChatID).Int("bytes", len(p.Bytes)).Str("file", p.FileName).Msg("noop: send document")
	return nil
}

func (n *NoopBotAdapter) SendTyping(ctx context.Context, chatID int64) error { return nil }

func (n *NoopBotAdapter) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	n.log.Info().Str("file_id", fileID).Msg("noop: download file")
	return []byte("OggS"), nil
}
