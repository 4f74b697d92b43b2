package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-voice-translator/internal/application"
	"telegram-voice-translator/internal/config"
	"telegram-voice-translator/internal/domain"
	"telegram-voice-translator/internal/domain/model"
	"telegram-voice-translator/internal/domain/ports/adapter"
	"telegram-voice-translator/internal/infra/metrics"
	red "telegram-voice-translator/internal/infra/redis"
)

// RealTelegramBotAdapter polls updates via tgbotapi and delegates to BotFacade.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.Config
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	dedup       *red.UpdateDedup
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

func NewRealTelegramBotAdapter(
	cfg *config.Config,
	rateLimiter *red.RateLimiter,
	dedup *red.UpdateDedup,
	log *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	workers := cfg.Bot.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, err
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		rateLimiter:   rateLimiter,
		dedup:         dedup,
		log:           log,
		updateWorkers: workers,
	}, nil
}

// Bind attaches the facade. The adapter is constructed before the facade
// because the pipeline's fetcher and sender wrap this same bot instance.
func (r *RealTelegramBotAdapter) Bind(facade *application.BotFacade) {
	r.facade = facade
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.facade == nil {
		return errors.New("bot facade not bound")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	chatID := msg.Chat.ID

	// Drop re-delivered updates after restarts.
	if r.dedup != nil {
		first, err := r.dedup.MarkSeen(ctx, chatID, msg.MessageID)
		if err != nil {
			r.log.Warn().Err(err).Msg("dedup check failed; processing anyway")
		}
		if !first {
			return nil
		}
	}

	command := "message"
	if msg.IsCommand() {
		command = "/" + msg.Command()
	}
	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(msg.From.ID, command),
			r.cfg.Limits.UserCommandRate, time.Minute)
		if err != nil {
			r.log.Warn().Err(err).Msg("rate limit check failed")
		} else if !allowed {
			return r.SendMessage(ctx, chatID, r.facade.RateLimited(), msg.MessageID)
		}
	}

	switch {
	case msg.IsCommand():
		metrics.IncUpdate("command")
		var text string
		switch msg.Command() {
		case "start":
			text = r.facade.HandleStart()
		case "help":
			text = r.facade.HandleHelp()
		case "langs":
			text = r.facade.HandleLangs()
		default:
			text = r.facade.HandleHelp()
		}
		return r.SendMessage(ctx, chatID, text, 0)

	case msg.Voice != nil:
		metrics.IncUpdate("voice")
		_ = r.SendTyping(ctx, chatID)
		inbound := model.InboundMessage{
			ChatID:     chatID,
			UserID:     msg.From.ID,
			MessageID:  msg.MessageID,
			Kind:       model.MessageKindVoice,
			Text:       msg.Caption,
			PayloadRef: msg.Voice.FileID,
			FileSize:   int64(msg.Voice.FileSize),
			ReceivedAt: time.Now(),
		}
		if reply := r.facade.HandleVoice(ctx, inbound); reply != "" {
			return r.SendMessage(ctx, chatID, reply, msg.MessageID)
		}
		return nil

	case msg.Document != nil:
		metrics.IncUpdate("document")
		_ = r.SendTyping(ctx, chatID)
		inbound := model.InboundMessage{
			ChatID:     chatID,
			UserID:     msg.From.ID,
			MessageID:  msg.MessageID,
			Kind:       model.MessageKindDocument,
			Text:       msg.Caption,
			PayloadRef: msg.Document.FileID,
			FileName:   msg.Document.FileName,
			FileSize:   int64(msg.Document.FileSize),
			ReceivedAt: time.Now(),
		}
		if reply := r.facade.HandleDocument(ctx, inbound); reply != "" {
			return r.SendMessage(ctx, chatID, reply, msg.MessageID)
		}
		return nil

	case msg.Text != "":
		metrics.IncUpdate("text")
		_ = r.SendTyping(ctx, chatID)
		inbound := model.InboundMessage{
			ChatID:     chatID,
			UserID:     msg.From.ID,
			MessageID:  msg.MessageID,
			Kind:       model.MessageKindText,
			Text:       msg.Text,
			ReceivedAt: time.Now(),
		}
		if reply := r.facade.HandleText(ctx, inbound); reply != "" {
			return r.SendMessage(ctx, chatID, reply, msg.MessageID)
		}
		return nil
	}

	metrics.IncUpdate("other")
	return nil
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string, inReplyTo int) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if inReplyTo != 0 {
		msg.ReplyToMessageID = inReplyTo
	}
	_, err := r.bot.Send(msg)
	return wrapSendErr(err)
}

func (r *RealTelegramBotAdapter) SendVoice(ctx context.Context, chatID int64, voice []byte, fileName, caption string, inReplyTo int) error {
	v := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{Name: fileName, Bytes: voice})
	v.Caption = caption
	if inReplyTo != 0 {
		v.ReplyToMessageID = inReplyTo
	}
	_, err := r.bot.Send(v)
	return wrapSendErr(err)
}

func (r *RealTelegramBotAdapter) SendDocument(ctx context.Context, p adapter.SendDocumentParams) error {
	d := tgbotapi.NewDocument(p.ChatID, tgbotapi.FileBytes{Name: p.FileName, Bytes: p.Bytes})
	d.Caption = p.Caption
	if p.InReplyTo != 0 {
		d.ReplyToMessageID = p.InReplyTo
	}
	_, err := r.bot.Send(d)
	return wrapSendErr(err)
}

func (r *RealTelegramBotAdapter) SendTyping(ctx context.Context, chatID int64) error {
	_, err := r.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	return err
}

// DownloadFile resolves a file_id and pulls the payload from Telegram's file
// servers. Voice payloads expire after a while, which Telegram reports as a
// 400/404 on GetFile.
func (r *RealTelegramBotAdapter) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := r.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusBadRequest || apiErr.Code == http.StatusNotFound) {
			return nil, fmt.Errorf("file %s: %w", fileID, domain.ErrResourceExpired)
		}
		return nil, fmt.Errorf("get file: %w: %v", domain.ErrTransportUnavailable, err)
	}

	url := file.Link(r.bot.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.bot.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w: %v", domain.ErrTransportUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, fmt.Errorf("file %s: %w", fileID, domain.ErrResourceExpired)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download: http %d: %w", resp.StatusCode, domain.ErrTransportUnavailable)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("download: %w: %v", domain.ErrTransportUnavailable, err)
	}
	return buf.Bytes(), nil
}

func wrapSendErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "Too Many Requests") {
		return fmt.Errorf("%v: %w", err, domain.ErrTransportUnavailable)
	}
	return err
}
