package telegram

import (
	"context"

	"telegram-voice-translator/internal/domain/ports/adapter"
)

// BotFileFetcher adapts the bot's file download into the AudioFetcher port.
// No retries here: the transport client already has its own HTTP behavior,
// and retry policy for pipeline stages lives with the callers that own it.
type BotFileFetcher struct {
	bot adapter.TelegramBotAdapter
}

var _ adapter.AudioFetcher = (*BotFileFetcher)(nil)

func NewBotFileFetcher(bot adapter.TelegramBotAdapter) *BotFileFetcher {
	return &BotFileFetcher{bot: bot}
}

func (f *BotFileFetcher) Fetch(ctx context.Context, payloadRef string) ([]byte, error) {
	return f.bot.DownloadFile(ctx, payloadRef)
}
