package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"telegram-voice-translator/internal/domain"
	"telegram-voice-translator/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.Translator = (*YandexTranslateAdapter)(nil)

// YandexTranslateAdapter calls the Yandex.Translate v2 HTTP API.
// Docs: https://cloud.yandex.com/docs/translate/api-ref/Translation/translate
// Authorization: Api-Key <key>
type YandexTranslateAdapter struct {
	apiKey string
	url    string
	client *http.Client
}

func NewYandexTranslateAdapter(apiKey, url string, timeout time.Duration) (*YandexTranslateAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("yandex translate api key empty")
	}
	if url == "" {
		url = "https://translate.api.cloud.yandex.net/translate/v2/translate"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &YandexTranslateAdapter{
		apiKey: apiKey,
		url:    url,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (y *YandexTranslateAdapter) Translate(ctx context.Context, text, targetLang string) (string, error) {
	reqBody := struct {
		TargetLanguageCode string   `json:"targetLanguageCode"`
		Texts              []string `json:"texts"`
	}{TargetLanguageCode: targetLang, Texts: []string{text}}

	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Api-Key "+y.apiKey)

	resp, err := y.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := classifyStatus("translate", resp.StatusCode); err != nil {
		return "", err
	}

	var payload struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	if len(payload.Translations) == 0 {
		return "", errors.New("translate: empty translations in response")
	}
	return payload.Translations[0].Text, nil
}

// classifyStatus maps backend HTTP status codes onto the domain taxonomy.
// 401/403 are auth failures and never retried; 400 means the input itself is
// bad; 429 and 5xx stay generic so the retry policy treats them as transient.
func classifyStatus(op string, code int) error {
	switch {
	case code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%s: http %d: %w", op, code, domain.ErrAuth)
	case code == http.StatusBadRequest:
		return fmt.Errorf("%s: http %d: %w", op, code, domain.ErrUnsupportedFormat)
	default:
		return fmt.Errorf("%s: http %d", op, code)
	}
}
