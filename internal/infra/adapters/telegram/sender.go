package telegram

import (
	"context"
	"fmt"

	"telegram-voice-translator/internal/domain"
	"telegram-voice-translator/internal/domain/model"
	"telegram-voice-translator/internal/domain/ports/adapter"
	"telegram-voice-translator/internal/infra/metrics"
	"telegram-voice-translator/internal/infra/retry"
)

// RetryingReplySender wraps the bot adapter with the shared retry policy.
// Deliveries are retried on transient transport errors; after exhaustion the
// failure surfaces as DeliveryFailed.
type RetryingReplySender struct {
	bot    adapter.TelegramBotAdapter
	policy retry.Policy
}

var _ adapter.ReplySender = (*RetryingReplySender)(nil)

func NewRetryingReplySender(bot adapter.TelegramBotAdapter, maxAttempts int) *RetryingReplySender {
	policy := retry.Default(maxAttempts)
	policy.Retryable = domain.IsRetryable
	return &RetryingReplySender{bot: bot, policy: policy}
}

func (s *RetryingReplySender) Send(ctx context.Context, reply model.Reply) error {
	kind := "text"
	switch {
	case len(reply.Voice) > 0:
		kind = "voice"
	case len(reply.Document) > 0:
		kind = "document"
	}
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		switch {
		case len(reply.Voice) > 0:
			return s.bot.SendVoice(ctx, reply.ChatID, reply.Voice, reply.VoiceName, reply.Caption, reply.InReplyTo)
		case len(reply.Document) > 0:
			return s.bot.SendDocument(ctx, adapter.SendDocumentParams{
				ChatID:    reply.ChatID,
				FileName:  reply.FileName,
				Bytes:     reply.Document,
				Caption:   reply.Caption,
				InReplyTo: reply.InReplyTo,
			})
		default:
			return s.bot.SendMessage(ctx, reply.ChatID, reply.Text, reply.InReplyTo)
		}
	})
	metrics.IncDelivery(kind, err == nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	return nil
}
