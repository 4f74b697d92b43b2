package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"telegram-voice-translator/internal/domain"
	"telegram-voice-translator/internal/domain/model"
	"telegram-voice-translator/internal/domain/ports/adapter"
	"telegram-voice-translator/internal/infra/i18n"
	"telegram-voice-translator/internal/infra/metrics"
)

// SpeechClient is the backend surface the pipeline needs: recognition,
// translation and synthesis, already rate-limited and retrying.
type SpeechClient interface {
	adapter.SpeechRecognizer
	adapter.Translator
	adapter.SpeechSynthesizer
}

type Config struct {
	Workers        int
	JobTTL         time.Duration
	STTLang        string
	DefaultLang    string
	MaxTextLength  int
	MaxSynthLength int
}

// Dispatcher owns the lifecycle of every job. It bounds total in-flight work
// with a semaphore and serializes jobs per chat: a chat's second message does
// not begin processing before the first reply was dispatched.
type Dispatcher struct {
	fetcher    adapter.AudioFetcher
	transcoder adapter.AudioTranscoder
	speech     SpeechClient
	sender     adapter.ReplySender
	msgs       *i18n.Translator
	cfg        Config
	log        *zerolog.Logger

	sem    chan struct{}
	mu     sync.Mutex
	queues map[int64][]*model.Job
	ctx    context.Context
	wg     sync.WaitGroup

	done      atomic.Int64
	failed    atomic.Int64
	abandoned atomic.Int64
}

var _ adapter.JobDispatcher = (*Dispatcher)(nil)
var _ adapter.PipelineInspector = (*Dispatcher)(nil)

func NewDispatcher(
	fetcher adapter.AudioFetcher,
	transcoder adapter.AudioTranscoder,
	speech SpeechClient,
	sender adapter.ReplySender,
	msgs *i18n.Translator,
	cfg Config,
	log *zerolog.Logger,
) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 2 * time.Minute
	}
	if cfg.DefaultLang == "" {
		cfg.DefaultLang = "ru"
	}
	return &Dispatcher{
		fetcher:    fetcher,
		transcoder: transcoder,
		speech:     speech,
		sender:     sender,
		msgs:       msgs,
		cfg:        cfg,
		log:        log,
		sem:        make(chan struct{}, cfg.Workers),
		queues:     map[int64][]*model.Job{},
	}
}

// Start binds the dispatcher to its lifetime context. Must be called before
// Dispatch.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	d.ctx = ctx
	d.mu.Unlock()
}

// Stop waits for all chat runners to drain.
func (d *Dispatcher) Stop() {
	d.wg.Wait()
}

// Dispatch creates the single job for an inbound message and queues it on
// its chat. The first job for an idle chat spawns a runner goroutine.
func (d *Dispatcher) Dispatch(msg model.InboundMessage) (*model.Job, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx == nil {
		return nil, errors.New("dispatcher not started")
	}
	if d.ctx.Err() != nil {
		return nil, d.ctx.Err()
	}

	job := model.NewJob(msg)
	queue, running := d.queues[msg.ChatID]
	d.queues[msg.ChatID] = append(queue, job)
	if !running {
		d.wg.Add(1)
		go d.runChat(msg.ChatID)
	}
	return job, nil
}

// Stats snapshots current load and lifetime outcome counters.
func (d *Dispatcher) Stats() model.PipelineStats {
	d.mu.Lock()
	chats := len(d.queues)
	queued := 0
	for _, q := range d.queues {
		queued += len(q)
	}
	d.mu.Unlock()
	return model.PipelineStats{
		ActiveChats: chats,
		QueuedJobs:  queued,
		InFlight:    len(d.sem),
		Done:        d.done.Load(),
		Failed:      d.failed.Load(),
		Abandoned:   d.abandoned.Load(),
	}
}

// runChat drains one chat's queue, one job at a time. The map entry exists
// exactly while a runner is alive, so queue presence doubles as the
// "runner active" flag.
func (d *Dispatcher) runChat(chatID int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		queue := d.queues[chatID]
		if len(queue) == 0 {
			delete(d.queues, chatID)
			d.mu.Unlock()
			return
		}
		job := queue[0]
		if len(queue) == 1 {
			d.queues[chatID] = queue[:0]
		} else {
			d.queues[chatID] = queue[1:]
		}
		d.mu.Unlock()

		select {
		case d.sem <- struct{}{}:
		case <-d.ctx.Done():
			job.Abandon()
			d.abandoned.Add(1)
			metrics.IncAbandoned()
			metrics.IncJob("abandoned", string(job.State()))
			continue
		}
		d.process(job)
		<-d.sem
	}
}

func (d *Dispatcher) process(job *model.Job) {
	metrics.JobStarted()
	defer metrics.JobFinished()

	deadline := job.Message.ReceivedAt.Add(d.cfg.JobTTL)
	ctx, cancel := context.WithDeadline(d.ctx, deadline)
	defer cancel()

	log := d.log.With().Str("job_id", job.ID).Str("trace_id", job.TraceID).
		Int64("chat_id", job.Message.ChatID).Str("kind", string(job.Message.Kind)).Logger()
	start := time.Now()

	// Jobs can outlive their TTL while queued behind a slow chat.
	if ctx.Err() != nil {
		job.Abandon()
		d.abandoned.Add(1)
		metrics.IncAbandoned()
		metrics.IncJob("abandoned", "")
		log.Warn().Dur("age", time.Since(job.Message.ReceivedAt)).Msg("job expired before processing")
		return
	}

	err := d.run(ctx, job)
	if err == nil {
		d.done.Add(1)
		metrics.IncJob("done", "")
		log.Info().Dur("duration", time.Since(start)).Msg("job done")
		return
	}

	// A dead job context means the TTL ran out (or we are shutting down):
	// abandon without any user-visible effect and free the slot.
	if ctx.Err() != nil {
		job.Abandon()
		d.abandoned.Add(1)
		metrics.IncAbandoned()
		metrics.IncJob("abandoned", "")
		log.Warn().Dur("age", time.Since(job.Message.ReceivedAt)).Msg("job abandoned after ttl")
		return
	}

	job.Fail(err)
	d.failed.Add(1)
	metrics.IncJob("failed", string(job.FailedStage()))
	log.Error().Err(err).Str("stage", string(job.FailedStage())).Msg("job failed")
	d.apologize(job, err)
}

// run drives the job through the pipeline stages. Text and document jobs
// share the machine; stages with nothing to do complete immediately.
func (d *Dispatcher) run(ctx context.Context, job *model.Job) error {
	msg := job.Message

	// Fetching
	if err := job.Advance(); err != nil {
		return err
	}
	var raw []byte
	if msg.Kind != model.MessageKindText {
		job.RecordAttempt()
		stageStart := time.Now()
		var err error
		raw, err = d.fetcher.Fetch(ctx, msg.PayloadRef)
		metrics.ObserveStage("fetching", int(time.Since(stageStart)/time.Millisecond))
		if err != nil {
			return err
		}
	}

	// Transcoding: audio normalization for voice, text extraction for
	// documents, nothing for plain text.
	if err := job.Advance(); err != nil {
		return err
	}
	var audio model.TranscodedAudio
	sourceText := msg.Text
	switch msg.Kind {
	case model.MessageKindVoice:
		job.RecordAttempt()
		stageStart := time.Now()
		var err error
		audio, err = d.transcoder.Transcode(raw, model.FormatOggOpus)
		metrics.ObserveStage("transcoding", int(time.Since(stageStart)/time.Millisecond))
		if err != nil {
			return err
		}
	case model.MessageKindDocument:
		job.RecordAttempt()
		if !utf8.Valid(raw) {
			return fmt.Errorf("document %s is not valid utf-8: %w", msg.FileName, domain.ErrUnsupportedFormat)
		}
		sourceText = string(raw)
		if d.cfg.MaxTextLength > 0 && len([]rune(sourceText)) > d.cfg.MaxTextLength {
			return domain.ErrTextTooLong
		}
	}

	// Recognizing: every backend call happens here.
	if err := job.Advance(); err != nil {
		return err
	}
	if msg.Kind == model.MessageKindVoice {
		job.RecordAttempt()
		stageStart := time.Now()
		res, err := d.speech.Recognize(ctx, audio, d.cfg.STTLang)
		metrics.ObserveStage("recognizing", int(time.Since(stageStart)/time.Millisecond))
		if err != nil {
			return err
		}
		sourceText = res.Text
	}

	target := msg.TargetLang
	if target == "" {
		target = d.cfg.DefaultLang
	}
	var translated string
	if sourceText != "" {
		var err error
		translated, err = d.speech.Translate(ctx, sourceText, target)
		if err != nil {
			return err
		}
	}

	// Replying
	if err := job.Advance(); err != nil {
		return err
	}
	job.RecordAttempt()
	stageStart := time.Now()
	err := d.reply(ctx, job, sourceText, translated, target)
	metrics.ObserveStage("replying", int(time.Since(stageStart)/time.Millisecond))
	if err != nil {
		return err
	}

	return job.Advance() // Done
}

func (d *Dispatcher) reply(ctx context.Context, job *model.Job, sourceText, translated, target string) error {
	msg := job.Message

	if sourceText == "" {
		// Silence in, nothing out: tell the user instead of sending an
		// empty translation.
		return d.sender.Send(ctx, model.Reply{
			ChatID:    msg.ChatID,
			Text:      d.msgs.T("error.nothing_recognized"),
			InReplyTo: msg.MessageID,
		})
	}

	if msg.Kind == model.MessageKindDocument {
		return d.sender.Send(ctx, model.Reply{
			ChatID:    msg.ChatID,
			Document:  []byte(translated),
			FileName:  "translated_" + msg.FileName,
			Caption:   d.msgs.T("reply.doc_caption", model.LanguageName(target)),
			InReplyTo: msg.MessageID,
		})
	}

	text := d.msgs.T("reply.translation", model.LanguageName(target), translated)
	if msg.Kind == model.MessageKindVoice {
		text = d.msgs.T("reply.recognized", sourceText) + "\n\n" + text
	}
	if err := d.sender.Send(ctx, model.Reply{
		ChatID:    msg.ChatID,
		Text:      text,
		InReplyTo: msg.MessageID,
	}); err != nil {
		return err
	}

	d.synthesize(ctx, job, translated, target)
	return nil
}

// synthesize voices the translation. Strictly best-effort: any failure
// degrades to a notice and never fails the job.
func (d *Dispatcher) synthesize(ctx context.Context, job *model.Job, text, lang string) {
	msg := job.Message
	notice := func() {
		_ = d.sender.Send(ctx, model.Reply{
			ChatID:    msg.ChatID,
			Text:      d.msgs.T("reply.synth_failed"),
			InReplyTo: msg.MessageID,
		})
	}

	if d.cfg.MaxSynthLength > 0 && len([]rune(text)) > d.cfg.MaxSynthLength {
		notice()
		return
	}
	voice, err := d.speech.Synthesize(ctx, text, lang)
	if err != nil || len(voice) == 0 {
		d.log.Warn().Err(err).Str("job_id", job.ID).Msg("synthesis failed")
		notice()
		return
	}
	if err := d.sender.Send(ctx, model.Reply{
		ChatID:    msg.ChatID,
		Voice:     voice,
		VoiceName: "translation_" + lang + ".mp3",
		Caption:   d.msgs.T("reply.voice_caption"),
		InReplyTo: msg.MessageID,
	}); err != nil {
		d.log.Warn().Err(err).Str("job_id", job.ID).Msg("voice reply delivery failed")
	}
}

// apologize sends a best-effort user-visible error reply. A failure here is
// swallowed so a broken transport cannot loop.
func (d *Dispatcher) apologize(job *model.Job, cause error) {
	if errors.Is(cause, domain.ErrDeliveryFailed) {
		// The transport just proved it cannot deliver; don't pile on.
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(d.ctx), 15*time.Second)
	defer cancel()

	text := d.msgs.T("error.apology")
	switch {
	case errors.Is(cause, domain.ErrResourceExpired):
		text = d.msgs.T("error.voice_expired")
	case errors.Is(cause, domain.ErrTextTooLong):
		text = d.msgs.T("error.text_too_long", d.cfg.MaxTextLength)
	}
	if err := d.sender.Send(ctx, model.Reply{
		ChatID:    job.Message.ChatID,
		Text:      text,
		InReplyTo: job.Message.MessageID,
	}); err != nil {
		d.log.Warn().Err(err).Str("job_id", job.ID).Msg("apology delivery failed")
	}
}
