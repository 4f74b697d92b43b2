package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string `yaml:"token"`
	Mode     string `yaml:"mode"` // polling | webhook (future)
	Workers  int    `yaml:"workers"`
	Language string `yaml:"language"` // bot reply language: ru|en
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type SpeechConfig struct {
	Provider       string        `yaml:"provider"` // yandex | openai
	SpeechKitKey   string        `yaml:"speechkit_key"`
	OpenAIKey      string        `yaml:"openai_key"`
	STTLang        string        `yaml:"stt_lang"`
	STTURL         string        `yaml:"stt_url"`
	TTSURL         string        `yaml:"tts_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxAttempts    int           `yaml:"max_attempts"`
	RatePerSecond  float64       `yaml:"rate_per_second"` // backend quota, token bucket refill
	RateBurst      int           `yaml:"rate_burst"`
}

type TranslateConfig struct {
	APIKey         string        `yaml:"api_key"`
	URL            string        `yaml:"url"`
	DefaultLang    string        `yaml:"default_lang"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LimitsConfig struct {
	MaxTextLength   int           `yaml:"max_text_length"`
	MaxSynthLength  int           `yaml:"max_synth_length"`
	MaxFileSize     int64         `yaml:"max_file_size"`
	JobTTL          time.Duration `yaml:"job_ttl"`
	UserCommandRate int           `yaml:"user_command_rate"` // per user per minute
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	DedupTTL time.Duration `yaml:"dedup_ttl"`
}

type OpsConfig struct {
	Port      int           `yaml:"port"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Speech    SpeechConfig    `yaml:"speech"`
	Translate TranslateConfig `yaml:"translate"`
	Limits    LimitsConfig    `yaml:"limits"`
	Redis     RedisConfig     `yaml:"redis"`
	Ops       OpsConfig       `yaml:"ops"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "ru"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Speech.Provider == "" {
		cfg.Speech.Provider = "yandex"
	}
	if cfg.Speech.STTLang == "" {
		cfg.Speech.STTLang = "ru-RU"
	}
	if cfg.Speech.STTURL == "" {
		cfg.Speech.STTURL = "https://stt.api.cloud.yandex.net/speech/v1/stt:recognize"
	}
	if cfg.Speech.TTSURL == "" {
		cfg.Speech.TTSURL = "https://tts.api.cloud.yandex.net/speech/v1/tts:synthesize"
	}
	if cfg.Speech.RequestTimeout <= 0 {
		cfg.Speech.RequestTimeout = 15 * time.Second
	}
	if cfg.Speech.MaxAttempts <= 0 {
		cfg.Speech.MaxAttempts = 4
	}
	if cfg.Speech.RatePerSecond <= 0 {
		cfg.Speech.RatePerSecond = 20
	}
	if cfg.Speech.RateBurst <= 0 {
		cfg.Speech.RateBurst = 20
	}
	if cfg.Translate.URL == "" {
		cfg.Translate.URL = "https://translate.api.cloud.yandex.net/translate/v2/translate"
	}
	if cfg.Translate.DefaultLang == "" {
		cfg.Translate.DefaultLang = "ru"
	}
	if cfg.Translate.RequestTimeout <= 0 {
		cfg.Translate.RequestTimeout = 10 * time.Second
	}
	if cfg.Limits.MaxTextLength <= 0 {
		cfg.Limits.MaxTextLength = 10000
	}
	if cfg.Limits.MaxSynthLength <= 0 {
		cfg.Limits.MaxSynthLength = 5000
	}
	if cfg.Limits.MaxFileSize <= 0 {
		cfg.Limits.MaxFileSize = 5 * 1024 * 1024
	}
	if cfg.Limits.JobTTL <= 0 {
		cfg.Limits.JobTTL = 2 * time.Minute
	}
	if cfg.Limits.UserCommandRate <= 0 {
		cfg.Limits.UserCommandRate = 20
	}
	if cfg.Redis.DedupTTL <= 0 {
		cfg.Redis.DedupTTL = time.Hour
	}
	if cfg.Ops.TokenTTL <= 0 {
		cfg.Ops.TokenTTL = 30 * time.Minute
	}
}

// validate enforces the startup-fatal requirements: the bot token and both
// backend API keys must be present before any traffic is accepted.
func (cfg *Config) validate() error {
	if cfg.Bot.Token == "" {
		return errors.New("bot.token is required")
	}
	if cfg.Translate.APIKey == "" {
		return errors.New("translate.api_key is required")
	}
	switch cfg.Speech.Provider {
	case "yandex":
		if cfg.Speech.SpeechKitKey == "" {
			return errors.New("speech.speechkit_key is required for provider yandex")
		}
	case "openai":
		if cfg.Speech.OpenAIKey == "" {
			return errors.New("speech.openai_key is required for provider openai")
		}
	default:
		return fmt.Errorf("unknown speech.provider %q", cfg.Speech.Provider)
	}
	// TTS always goes through SpeechKit, even with the Whisper recognizer.
	if cfg.Speech.SpeechKitKey == "" {
		return errors.New("speech.speechkit_key is required")
	}
	return nil
}
