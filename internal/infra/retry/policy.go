// Package retry holds the backoff policy shared by the speech clients and
// the reply sender.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Policy describes bounded retry with exponential backoff and jitter.
// A zero MaxAttempts means "try once".
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Jitter is the fraction of the computed delay randomized away,
	// in [0,1). 0.2 means the actual delay is delay * [0.8, 1.0).
	Jitter float64
	// Retryable decides whether an error is worth another attempt.
	// nil means every error is retryable.
	Retryable func(error) bool
	// OnRetry is invoked before each sleep, for metrics/logging.
	OnRetry func(attempt int, err error)

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func Default(maxAttempts int) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   300 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Jitter:      0.25,
	}
}

// Do runs fn until it succeeds, the attempt budget is exhausted, a
// non-retryable error surfaces, or ctx is done. It returns the last error.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		if serr := sleep(ctx, p.delay(attempt)); serr != nil {
			return serr
		}
	}
	return err
}

func (p Policy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	if d <= 0 {
		d = 100 * time.Millisecond
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			d = p.MaxDelay
			break
		}
	}
	if p.Jitter > 0 {
		f := 1 - p.Jitter*rand.Float64()
		d = time.Duration(float64(d) * f)
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
