package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"telegram-voice-translator/internal/domain/model"
	"telegram-voice-translator/internal/domain/ports/adapter"
	"telegram-voice-translator/internal/infra/audio"
)

var _ adapter.SpeechRecognizer = (*WhisperSTTAdapter)(nil)

// WhisperSTTAdapter is the alternative recognizer, selected with
// speech.provider=openai. Raw LPCM is wrapped into a WAV container because
// the transcription endpoint wants a self-describing file.
type WhisperSTTAdapter struct {
	client openai.Client
}

func NewWhisperSTTAdapter(apiKey string) (*WhisperSTTAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	return &WhisperSTTAdapter{client: openai.NewClient(option.WithAPIKey(apiKey))}, nil
}

func (w *WhisperSTTAdapter) Recognize(ctx context.Context, in model.TranscodedAudio, lang string) (model.RecognitionResult, error) {
	var (
		payload  []byte
		fileName string
		mime     string
	)
	switch in.Format {
	case model.FormatOggOpus:
		payload, fileName, mime = in.Bytes, "voice.ogg", "audio/ogg"
	case model.FormatLPCM:
		samples := make([]int16, len(in.Bytes)/2)
		if err := binary.Read(bytes.NewReader(in.Bytes), binary.LittleEndian, samples); err != nil {
			return model.RecognitionResult{}, fmt.Errorf("whisper: repack lpcm: %w", err)
		}
		wav, err := audio.EncodeWAV(samples, in.SampleRate)
		if err != nil {
			return model.RecognitionResult{}, fmt.Errorf("whisper: repack lpcm: %w", err)
		}
		payload, fileName, mime = wav, "voice.wav", "audio/wav"
	default:
		return model.RecognitionResult{}, fmt.Errorf("whisper: unexpected input format %q", in.Format)
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(payload), fileName, mime),
		Model: openai.AudioModelWhisper1,
	}
	if lang != "" {
		params.Language = openai.String(lang)
	}

	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			if cerr := classifyStatus("whisper", apiErr.StatusCode); cerr != nil {
				return model.RecognitionResult{}, cerr
			}
		}
		return model.RecognitionResult{}, err
	}
	return model.RecognitionResult{Text: resp.Text, Language: lang}, nil
}
