package adapter

import (
	"context"

	"telegram-voice-translator/internal/domain/model"
)

// SpeechRecognizer turns recognizer-ready audio into text.
type SpeechRecognizer interface {
	Recognize(ctx context.Context, audio model.TranscodedAudio, lang string) (model.RecognitionResult, error)
}

// Translator translates text into the target language code ("ru", "en", ...).
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// SpeechSynthesizer renders text to spoken audio (mp3).
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// AudioTranscoder normalizes raw audio into the recognizer's input profile.
// Implementations must be pure and safe for concurrent use.
type AudioTranscoder interface {
	Transcode(raw []byte, source model.AudioFormat) (model.TranscodedAudio, error)
}

// AudioFetcher retrieves the raw voice payload referenced by an update.
type AudioFetcher interface {
	Fetch(ctx context.Context, payloadRef string) ([]byte, error)
}
