package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"telegram-voice-translator/internal/domain/model"
	"telegram-voice-translator/internal/domain/ports/adapter"
)

var _ adapter.SpeechRecognizer = (*YandexSTTAdapter)(nil)

// YandexSTTAdapter calls SpeechKit short-audio recognition.
// Docs: https://cloud.yandex.com/docs/speechkit/stt/api/request-api
// Audio goes in the body; format/lang/rate go in the query string.
type YandexSTTAdapter struct {
	apiKey string
	url    string
	client *http.Client
}

func NewYandexSTTAdapter(apiKey, endpoint string, timeout time.Duration) (*YandexSTTAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("speechkit api key empty")
	}
	if endpoint == "" {
		endpoint = "https://stt.api.cloud.yandex.net/speech/v1/stt:recognize"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &YandexSTTAdapter{
		apiKey: apiKey,
		url:    endpoint,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (y *YandexSTTAdapter) Recognize(ctx context.Context, audio model.TranscodedAudio, lang string) (model.RecognitionResult, error) {
	q := url.Values{}
	q.Set("format", string(audio.Format))
	if audio.Format == model.FormatLPCM {
		q.Set("sampleRateHertz", strconv.Itoa(audio.SampleRate))
	}
	if lang != "" {
		q.Set("lang", lang)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.url+"?"+q.Encode(), bytes.NewReader(audio.Bytes))
	if err != nil {
		return model.RecognitionResult{}, err
	}
	req.Header.Set("Authorization", "Api-Key "+y.apiKey)

	resp, err := y.client.Do(req)
	if err != nil {
		return model.RecognitionResult{}, err
	}
	defer resp.Body.Close()
	if err := classifyStatus("stt", resp.StatusCode); err != nil {
		return model.RecognitionResult{}, err
	}

	var payload struct {
		Result       string `json:"result"`
		ErrorCode    string `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.RecognitionResult{}, fmt.Errorf("stt: decode response: %w", err)
	}
	if payload.ErrorCode != "" {
		return model.RecognitionResult{}, fmt.Errorf("stt: backend error %s: %s", payload.ErrorCode, payload.ErrorMessage)
	}
	return model.RecognitionResult{Text: payload.Result, Language: lang}, nil
}
