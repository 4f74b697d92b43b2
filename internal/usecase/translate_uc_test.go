package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"telegram-voice-translator/internal/config"
	"telegram-voice-translator/internal/domain"
	"telegram-voice-translator/internal/domain/model"
)

func newTranslateUC() *translateUC {
	log := zerolog.Nop()
	return NewTranslateUseCase(config.LimitsConfig{
		MaxTextLength: 100,
		MaxFileSize:   1024,
	}, "ru", &log)
}

func TestParseTarget(t *testing.T) {
	cases := []struct {
		in, clean, target string
	}{
		{"Hello world es", "Hello world", "es"},
		{"Hello world ES", "Hello world", "es"},
		{"Hello world", "Hello world", ""},
		{"Привет en", "Привет", "en"},
		{"en", "en", ""},
		{"  spaced out fr  ", "spaced out", "fr"},
		{"ends with xx", "ends with xx", ""},
	}
	for _, c := range cases {
		clean, target := ParseTarget(c.in)
		if clean != c.clean || target != c.target {
			t.Errorf("ParseTarget(%q) = (%q, %q), want (%q, %q)", c.in, clean, target, c.clean, c.target)
		}
	}
}

func TestPrepareTextResolvesTarget(t *testing.T) {
	uc := newTranslateUC()

	msg, err := uc.PrepareText(model.InboundMessage{Text: "Hello world es"})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Text != "Hello world" || msg.TargetLang != "es" {
		t.Errorf("got text=%q target=%q", msg.Text, msg.TargetLang)
	}

	msg, err = uc.PrepareText(model.InboundMessage{Text: "Hello"})
	if err != nil {
		t.Fatal(err)
	}
	if msg.TargetLang != "ru" {
		t.Errorf("default target = %q, want ru", msg.TargetLang)
	}
}

func TestPrepareTextRejectsOversized(t *testing.T) {
	uc := newTranslateUC()
	_, err := uc.PrepareText(model.InboundMessage{Text: strings.Repeat("a", 101)})
	if !errors.Is(err, domain.ErrTextTooLong) {
		t.Fatalf("err = %v, want ErrTextTooLong", err)
	}
}

func TestPrepareVoice(t *testing.T) {
	uc := newTranslateUC()

	msg, err := uc.PrepareVoice(model.InboundMessage{FileSize: 500, Text: "EN"})
	if err != nil {
		t.Fatal(err)
	}
	if msg.TargetLang != "en" {
		t.Errorf("target = %q", msg.TargetLang)
	}

	if _, err := uc.PrepareVoice(model.InboundMessage{FileSize: 2048}); !errors.Is(err, domain.ErrDocumentTooBig) {
		t.Errorf("oversized voice err = %v, want ErrDocumentTooBig", err)
	}
	if _, err := uc.PrepareVoice(model.InboundMessage{Text: "klingon"}); !errors.Is(err, domain.ErrUnknownLanguage) {
		t.Errorf("unknown caption err = %v, want ErrUnknownLanguage", err)
	}
}

func TestPrepareDocument(t *testing.T) {
	uc := newTranslateUC()

	msg, err := uc.PrepareDocument(model.InboundMessage{FileName: "notes.TXT", FileSize: 10, Text: "fr"})
	if err != nil {
		t.Fatal(err)
	}
	if msg.TargetLang != "fr" {
		t.Errorf("target = %q", msg.TargetLang)
	}

	if _, err := uc.PrepareDocument(model.InboundMessage{FileName: "img.png", FileSize: 10}); !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Errorf("png err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := uc.PrepareDocument(model.InboundMessage{FileName: "a.txt", FileSize: 9999}); !errors.Is(err, domain.ErrDocumentTooBig) {
		t.Errorf("big doc err = %v, want ErrDocumentTooBig", err)
	}
	if _, err := uc.PrepareDocument(model.InboundMessage{FileName: "a.txt", FileSize: 10, Text: "xx"}); !errors.Is(err, domain.ErrUnknownLanguage) {
		t.Errorf("unknown lang err = %v, want ErrUnknownLanguage", err)
	}
}
