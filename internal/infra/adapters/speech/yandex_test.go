package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"telegram-voice-translator/internal/domain"
	"telegram-voice-translator/internal/domain/model"
)

func TestYandexTranslateParsesResponse(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			TargetLanguageCode string   `json:"targetLanguageCode"`
			Texts              []string `json:"texts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.TargetLanguageCode != "en" || len(body.Texts) != 1 || body.Texts[0] != "привет" {
			t.Errorf("unexpected request body: %+v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"translations": []map[string]string{{"text": "hello"}},
		})
	}))
	defer srv.Close()

	ad, err := NewYandexTranslateAdapter("key", srv.URL, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	out, err := ad.Translate(context.Background(), "привет", "en")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "hello" {
		t.Errorf("out = %q, want hello", out)
	}
	if gotAuth != "Api-Key key" {
		t.Errorf("auth header = %q", gotAuth)
	}
}

func TestYandexTranslateAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	ad, _ := NewYandexTranslateAdapter("bad", srv.URL, time.Second)
	_, err := ad.Translate(context.Background(), "x", "en")
	if !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("err = %v, want ErrAuth", err)
	}
}

func TestYandexSTTRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("format") != "lpcm" || q.Get("sampleRateHertz") != "16000" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("lang") != "ru-RU" {
			t.Errorf("lang = %q", q.Get("lang"))
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "привет мир"})
	}))
	defer srv.Close()

	ad, _ := NewYandexSTTAdapter("key", srv.URL, time.Second)
	res, err := ad.Recognize(context.Background(), model.TranscodedAudio{
		Format:     model.FormatLPCM,
		SampleRate: 16000,
		Bytes:      []byte{0, 0, 1, 1},
	}, "ru-RU")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Text != "привет мир" {
		t.Errorf("text = %q", res.Text)
	}
}

func TestYandexSTTBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error_code":    "BAD_REQUEST",
			"error_message": "audio too long",
		})
	}))
	defer srv.Close()

	ad, _ := NewYandexSTTAdapter("key", srv.URL, time.Second)
	_, err := ad.Recognize(context.Background(), model.TranscodedAudio{Format: model.FormatOggOpus, Bytes: []byte{1}}, "")
	if err == nil {
		t.Fatal("expected backend error")
	}
}

func TestYandexTTSSendsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.Form.Get("voice") != "alena" || r.Form.Get("format") != "mp3" {
			t.Errorf("unexpected form: %v", r.Form)
		}
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	ad, _ := NewYandexTTSAdapter("key", srv.URL, time.Second)
	out, err := ad.Synthesize(context.Background(), "привет", "ru")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(out) != "mp3-bytes" {
		t.Errorf("out = %q", out)
	}
}

func TestVoiceFor(t *testing.T) {
	if voiceFor("ru") != "alena" {
		t.Error("ru should use alena")
	}
	if voiceFor("en") != "john" {
		t.Error("non-ru should use john")
	}
}
