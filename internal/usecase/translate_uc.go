package usecase

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"telegram-voice-translator/internal/config"
	"telegram-voice-translator/internal/domain"
	"telegram-voice-translator/internal/domain/model"
)

// Compile-time check
var _ TranslateUseCase = (*translateUC)(nil)

// TranslateUseCase validates inbound messages and resolves their target
// language before they enter the pipeline. Prepare* returns the message
// ready to dispatch, or a validation error the caller surfaces to the chat.
type TranslateUseCase interface {
	PrepareText(msg model.InboundMessage) (model.InboundMessage, error)
	PrepareVoice(msg model.InboundMessage) (model.InboundMessage, error)
	PrepareDocument(msg model.InboundMessage) (model.InboundMessage, error)
}

type translateUC struct {
	limits      config.LimitsConfig
	defaultLang string

	log *zerolog.Logger
}

func NewTranslateUseCase(limits config.LimitsConfig, defaultLang string, logger *zerolog.Logger) *translateUC {
	if defaultLang == "" {
		defaultLang = "ru"
	}
	return &translateUC{limits: limits, defaultLang: defaultLang, log: logger}
}

// ParseTarget splits a trailing language code off the text: "Hello world es"
// translates "Hello world" to Spanish. Text without a recognized suffix keeps
// its full content and an empty target.
func ParseTarget(text string) (clean, target string) {
	trimmed := strings.TrimSpace(text)
	idx := strings.LastIndexAny(trimmed, " \t\n")
	if idx < 0 {
		return trimmed, ""
	}
	suffix := strings.ToLower(strings.TrimSpace(trimmed[idx+1:]))
	if !model.IsSupportedLanguage(suffix) {
		return trimmed, ""
	}
	return strings.TrimSpace(trimmed[:idx]), suffix
}

func (u *translateUC) PrepareText(msg model.InboundMessage) (model.InboundMessage, error) {
	clean, target := ParseTarget(msg.Text)
	if clean == "" {
		return msg, fmt.Errorf("empty text: %w", domain.ErrUnsupportedFormat)
	}
	if u.limits.MaxTextLength > 0 && len([]rune(clean)) > u.limits.MaxTextLength {
		return msg, domain.ErrTextTooLong
	}
	msg.Text = clean
	if target == "" {
		target = u.defaultLang
	}
	msg.TargetLang = target
	return msg, nil
}

func (u *translateUC) PrepareVoice(msg model.InboundMessage) (model.InboundMessage, error) {
	if u.limits.MaxFileSize > 0 && msg.FileSize > u.limits.MaxFileSize {
		return msg, domain.ErrDocumentTooBig
	}
	// A caption like "en" picks the translation target.
	if caption := strings.ToLower(strings.TrimSpace(msg.Text)); caption != "" {
		if !model.IsSupportedLanguage(caption) {
			return msg, fmt.Errorf("caption %q: %w", caption, domain.ErrUnknownLanguage)
		}
		msg.TargetLang = caption
	} else {
		msg.TargetLang = u.defaultLang
	}
	return msg, nil
}

func (u *translateUC) PrepareDocument(msg model.InboundMessage) (model.InboundMessage, error) {
	if ext := strings.ToLower(filepath.Ext(msg.FileName)); ext != ".txt" {
		return msg, fmt.Errorf("extension %q: %w", ext, domain.ErrUnsupportedFormat)
	}
	if u.limits.MaxFileSize > 0 && msg.FileSize > u.limits.MaxFileSize {
		return msg, domain.ErrDocumentTooBig
	}
	caption := strings.ToLower(strings.TrimSpace(msg.Text))
	if caption == "" {
		msg.TargetLang = u.defaultLang
		return msg, nil
	}
	if !model.IsSupportedLanguage(caption) {
		return msg, fmt.Errorf("caption %q: %w", caption, domain.ErrUnknownLanguage)
	}
	msg.TargetLang = caption
	return msg, nil
}
