package speech

import (
	"context"
	"errors"
	"time"

	"telegram-voice-translator/internal/domain"
	"telegram-voice-translator/internal/domain/model"
	"telegram-voice-translator/internal/domain/ports/adapter"
	"telegram-voice-translator/internal/infra/metrics"
	"telegram-voice-translator/internal/infra/ratelimit"
	"telegram-voice-translator/internal/infra/retry"
)

// Client is the rate-limited, retrying front to the speech backend. Every
// outbound call first takes a token from the shared bucket (suspending, not
// failing, under quota pressure), then runs under the shared retry policy.
// Auth errors break out of the retry loop immediately.
type Client struct {
	rec      adapter.SpeechRecognizer
	tr       adapter.Translator
	syn      adapter.SpeechSynthesizer
	bucket   *ratelimit.Bucket
	policy   retry.Policy
	provider string
}

var (
	_ adapter.SpeechRecognizer  = (*Client)(nil)
	_ adapter.Translator        = (*Client)(nil)
	_ adapter.SpeechSynthesizer = (*Client)(nil)
)

func NewClient(
	provider string,
	rec adapter.SpeechRecognizer,
	tr adapter.Translator,
	syn adapter.SpeechSynthesizer,
	bucket *ratelimit.Bucket,
	maxAttempts int,
) *Client {
	policy := retry.Default(maxAttempts)
	policy.Retryable = domain.IsRetryable
	return &Client{
		rec:      rec,
		tr:       tr,
		syn:      syn,
		bucket:   bucket,
		policy:   policy,
		provider: provider,
	}
}

func (c *Client) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	policy := c.policy
	policy.OnRetry = func(attempt int, err error) {
		metrics.IncSpeechRetry(c.provider, op)
	}
	return policy.Do(ctx, func(ctx context.Context) error {
		waitStart := time.Now()
		if err := c.bucket.Wait(ctx); err != nil {
			return err
		}
		metrics.ObserveRateLimitWait(int(time.Since(waitStart) / time.Millisecond))

		callStart := time.Now()
		err := fn(ctx)
		metrics.ObserveSpeechCall(c.provider, op, int(time.Since(callStart)/time.Millisecond), err == nil)
		return err
	})
}

func (c *Client) Recognize(ctx context.Context, audio model.TranscodedAudio, lang string) (model.RecognitionResult, error) {
	var res model.RecognitionResult
	err := c.do(ctx, "recognize", func(ctx context.Context) error {
		var ferr error
		res, ferr = c.rec.Recognize(ctx, audio, lang)
		return ferr
	})
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			return model.RecognitionResult{}, err
		}
		return model.RecognitionResult{}, &domain.RecognitionError{Cause: err}
	}
	return res, nil
}

func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	var out string
	err := c.do(ctx, "translate", func(ctx context.Context) error {
		var ferr error
		out, ferr = c.tr.Translate(ctx, text, targetLang)
		return ferr
	})
	return out, err
}

func (c *Client) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	var out []byte
	err := c.do(ctx, "synthesize", func(ctx context.Context) error {
		var ferr error
		out, ferr = c.syn.Synthesize(ctx, text, lang)
		return ferr
	})
	return out, err
}
