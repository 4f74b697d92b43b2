package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"telegram-voice-translator/internal/application"
	"telegram-voice-translator/internal/config"
	"telegram-voice-translator/internal/domain/ports/adapter"
	speechAdapters "telegram-voice-translator/internal/infra/adapters/speech"
	tele "telegram-voice-translator/internal/infra/adapters/telegram"
	"telegram-voice-translator/internal/infra/audio"
	"telegram-voice-translator/internal/infra/i18n"
	"telegram-voice-translator/internal/infra/logging"
	"telegram-voice-translator/internal/infra/metrics"
	"telegram-voice-translator/internal/infra/ratelimit"
	red "telegram-voice-translator/internal/infra/redis"
	"telegram-voice-translator/internal/infra/web"
	"telegram-voice-translator/internal/infra/worker"
	"telegram-voice-translator/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs, no real Telegram traffic")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Redis (dedup + per-user command limits) ----
	var rateLimiter *red.RateLimiter
	var dedup *red.UpdateDedup
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		rateLimiter = red.NewRateLimiter(redisClient)
		dedup = red.NewUpdateDedup(redisClient, cfg.Redis.DedupTTL)
	} else {
		logger.Warn().Msg("redis.url not set; update dedup and per-user limits disabled")
	}

	// ---- Speech backend (Yandex SpeechKit or Whisper for recognition) ----
	var recognizer adapter.SpeechRecognizer
	switch cfg.Speech.Provider {
	case "openai":
		recognizer, err = speechAdapters.NewWhisperSTTAdapter(cfg.Speech.OpenAIKey)
	default:
		recognizer, err = speechAdapters.NewYandexSTTAdapter(cfg.Speech.SpeechKitKey, cfg.Speech.STTURL, cfg.Speech.RequestTimeout)
	}
	if err != nil {
		log.Fatalf("stt adapter: %v", err)
	}
	logger.Info().Str("provider", cfg.Speech.Provider).Msg("speech recognizer configured")

	translator, err := speechAdapters.NewYandexTranslateAdapter(cfg.Translate.APIKey, cfg.Translate.URL, cfg.Translate.RequestTimeout)
	if err != nil {
		log.Fatalf("translate adapter: %v", err)
	}
	synthesizer, err := speechAdapters.NewYandexTTSAdapter(cfg.Speech.SpeechKitKey, cfg.Speech.TTSURL, cfg.Speech.RequestTimeout)
	if err != nil {
		log.Fatalf("tts adapter: %v", err)
	}

	bucket := ratelimit.NewBucket(cfg.Speech.RatePerSecond, cfg.Speech.RateBurst)
	speechClient := speechAdapters.NewClient(cfg.Speech.Provider, recognizer, translator, synthesizer, bucket, cfg.Speech.MaxAttempts)

	// ---- Telegram ----
	var bot adapter.TelegramBotAdapter
	var realBot *tele.RealTelegramBotAdapter
	if cfg.Runtime.Dev {
		bot = tele.NewNoopBotAdapter(logger, true)
	} else {
		realBot, err = tele.NewRealTelegramBotAdapter(cfg, rateLimiter, dedup, logger)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
		bot = realBot
	}
	if mode := strings.ToLower(cfg.Bot.Mode); mode != "" && mode != "polling" {
		logger.Warn().Str("mode", mode).Msg("bot mode not implemented; falling back to polling")
	}

	// ---- Pipeline ----
	msgs, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		log.Fatalf("i18n: %v", err)
	}
	dispatcher := worker.NewDispatcher(
		tele.NewBotFileFetcher(bot),
		audio.NewTranscoder(),
		speechClient,
		tele.NewRetryingReplySender(bot, cfg.Speech.MaxAttempts),
		msgs,
		worker.Config{
			Workers:        cfg.Bot.Workers,
			JobTTL:         cfg.Limits.JobTTL,
			STTLang:        cfg.Speech.STTLang,
			DefaultLang:    cfg.Translate.DefaultLang,
			MaxTextLength:  cfg.Limits.MaxTextLength,
			MaxSynthLength: cfg.Limits.MaxSynthLength,
		},
		logger,
	)
	dispatcher.Start(ctx)

	// ---- Use cases + facade ----
	translateUC := usecase.NewTranslateUseCase(cfg.Limits, cfg.Translate.DefaultLang, logger)
	statsUC := usecase.NewStatsUseCase(dispatcher, logger)
	facade := application.NewBotFacade(translateUC, dispatcher, msgs, cfg.Limits, logger)

	if realBot != nil {
		realBot.Bind(facade)
		go func() {
			if err := realBot.StartPolling(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	// ---- Ops server ----
	if cfg.Ops.Port > 0 {
		srv := web.NewServer(statsUC, cfg.Ops, !cfg.Runtime.Dev, logger)
		go func() {
			logger.Info().Int("port", cfg.Ops.Port).Msg("ops server listening")
			if err := srv.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("ops server stopped")
			}
		}()
	}

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	if realBot != nil {
		realBot.StopPolling()
	}
	cancel()
	dispatcher.Stop()
}
