package speech

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"telegram-voice-translator/internal/domain/ports/adapter"
)

var _ adapter.SpeechSynthesizer = (*YandexTTSAdapter)(nil)

// YandexTTSAdapter calls SpeechKit tts:synthesize and returns mp3 bytes.
// The voice follows the original bot: alena for Russian, john otherwise.
type YandexTTSAdapter struct {
	apiKey string
	url    string
	client *http.Client
}

func NewYandexTTSAdapter(apiKey, endpoint string, timeout time.Duration) (*YandexTTSAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("speechkit api key empty")
	}
	if endpoint == "" {
		endpoint = "https://tts.api.cloud.yandex.net/speech/v1/tts:synthesize"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &YandexTTSAdapter{
		apiKey: apiKey,
		url:    endpoint,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func voiceFor(lang string) string {
	if lang == "ru" {
		return "alena"
	}
	return "john"
}

func (y *YandexTTSAdapter) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("lang", lang)
	form.Set("voice", voiceFor(lang))
	form.Set("format", "mp3")
	form.Set("sampleRateHertz", "48000")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Api-Key "+y.apiKey)

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := classifyStatus("tts", resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}
