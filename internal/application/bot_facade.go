package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"telegram-voice-translator/internal/config"
	"telegram-voice-translator/internal/domain"
	"telegram-voice-translator/internal/domain/model"
	"telegram-voice-translator/internal/domain/ports/adapter"
	"telegram-voice-translator/internal/infra/i18n"
	"telegram-voice-translator/internal/usecase"
)

// BotFacade sits between the Telegram adapter and the pipeline. Handle*
// methods return the string to send back immediately; an empty string means
// the message was accepted and the pipeline will reply asynchronously.
type BotFacade struct {
	translateUC usecase.TranslateUseCase
	dispatcher  adapter.JobDispatcher
	msgs        *i18n.Translator
	limits      config.LimitsConfig

	log *zerolog.Logger
}

func NewBotFacade(
	translateUC usecase.TranslateUseCase,
	dispatcher adapter.JobDispatcher,
	msgs *i18n.Translator,
	limits config.LimitsConfig,
	logger *zerolog.Logger,
) *BotFacade {
	return &BotFacade{
		translateUC: translateUC,
		dispatcher:  dispatcher,
		msgs:        msgs,
		limits:      limits,
		log:         logger,
	}
}

func (b *BotFacade) HandleStart() string { return b.msgs.T("start") }

func (b *BotFacade) HandleHelp() string { return b.msgs.T("help") }

// HandleLangs lists the translation targets, stable-ordered by code.
func (b *BotFacade) HandleLangs() string {
	codes := make([]string, 0, len(model.SupportedLanguages))
	for code := range model.SupportedLanguages {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var sb strings.Builder
	sb.WriteString(b.msgs.T("langs_header"))
	for _, code := range codes {
		sb.WriteString(fmt.Sprintf("\n%s - %s", code, model.SupportedLanguages[code]))
	}
	return sb.String()
}

func (b *BotFacade) RateLimited() string { return b.msgs.T("error.rate_limited") }

func (b *BotFacade) HandleText(ctx context.Context, msg model.InboundMessage) string {
	prepared, err := b.translateUC.PrepareText(msg)
	if err != nil {
		return b.validationReply(err)
	}
	return b.dispatch(prepared)
}

func (b *BotFacade) HandleVoice(ctx context.Context, msg model.InboundMessage) string {
	prepared, err := b.translateUC.PrepareVoice(msg)
	if err != nil {
		return b.validationReply(err)
	}
	return b.dispatch(prepared)
}

func (b *BotFacade) HandleDocument(ctx context.Context, msg model.InboundMessage) string {
	prepared, err := b.translateUC.PrepareDocument(msg)
	if err != nil {
		return b.validationReply(err)
	}
	return b.dispatch(prepared)
}

func (b *BotFacade) dispatch(msg model.InboundMessage) string {
	job, err := b.dispatcher.Dispatch(msg)
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("dispatch failed")
		return b.msgs.T("error.apology")
	}
	b.log.Debug().Str("job_id", job.ID).Int64("chat_id", msg.ChatID).
		Str("kind", string(msg.Kind)).Msg("job dispatched")
	return ""
}

func (b *BotFacade) validationReply(err error) string {
	switch {
	case errors.Is(err, domain.ErrTextTooLong):
		return b.msgs.T("error.text_too_long", b.limits.MaxTextLength)
	case errors.Is(err, domain.ErrDocumentTooBig):
		return b.msgs.T("error.file_too_big", b.limits.MaxFileSize/(1024*1024))
	case errors.Is(err, domain.ErrUnknownLanguage):
		return b.msgs.T("error.unknown_language")
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return b.msgs.T("error.unsupported_file")
	}
	return b.msgs.T("error.apology")
}
