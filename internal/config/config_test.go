package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const validYAML = `
bot:
  token: "123:abc"
speech:
  speechkit_key: "sk-key"
translate:
  api_key: "tr-key"
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeTemp(t, validYAML), false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bot.Workers != 8 {
		t.Errorf("workers default = %d, want 8", cfg.Bot.Workers)
	}
	if cfg.Speech.Provider != "yandex" {
		t.Errorf("provider default = %q, want yandex", cfg.Speech.Provider)
	}
	if cfg.Speech.MaxAttempts != 4 {
		t.Errorf("max attempts default = %d, want 4", cfg.Speech.MaxAttempts)
	}
	if cfg.Limits.MaxTextLength != 10000 {
		t.Errorf("max text length default = %d, want 10000", cfg.Limits.MaxTextLength)
	}
	if cfg.Limits.JobTTL != 2*time.Minute {
		t.Errorf("job ttl default = %v, want 2m", cfg.Limits.JobTTL)
	}
	if cfg.Translate.DefaultLang != "ru" {
		t.Errorf("default lang = %q, want ru", cfg.Translate.DefaultLang)
	}
}

func TestLoadConfigMissingCredentialsFatal(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no bot token", `
speech:
  speechkit_key: "k"
translate:
  api_key: "k"
`, "bot.token"},
		{"no speechkit key", `
bot:
  token: "t"
translate:
  api_key: "k"
`, "speechkit_key"},
		{"no translate key", `
bot:
  token: "t"
speech:
  speechkit_key: "k"
`, "translate.api_key"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeTemp(t, tc.yaml), false)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadConfigOpenAIProviderNeedsKey(t *testing.T) {
	yaml := `
bot:
  token: "t"
speech:
  provider: openai
  speechkit_key: "k"
translate:
  api_key: "k"
`
	_, err := LoadConfig(writeTemp(t, yaml), false)
	if err == nil || !strings.Contains(err.Error(), "openai_key") {
		t.Fatalf("expected openai_key error, got %v", err)
	}
}
