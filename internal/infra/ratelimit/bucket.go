// Package ratelimit provides the token bucket shared by all workers calling
// the speech backend. The bucket is the only mutable state shared across
// jobs; everything goes through its mutex.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Bucket is a continuously refilled token bucket. Wait blocks until a token
// is available instead of failing, so callers suspend under quota pressure
// and no call is ever dropped.
type Bucket struct {
	mu       sync.Mutex
	tokens   float64
	burst    float64
	rate     float64 // tokens per second
	lastFill time.Time

	now func() time.Time // replaceable in tests
}

func NewBucket(ratePerSecond float64, burst int) *Bucket {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Bucket{
		tokens:   float64(burst),
		burst:    float64(burst),
		rate:     ratePerSecond,
		lastFill: time.Now(),
		now:      time.Now,
	}
}

func (b *Bucket) refillLocked() {
	now := b.now()
	elapsed := now.Sub(b.lastFill).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens += elapsed * b.rate
	if b.tokens > b.burst {
		b.tokens = b.burst
	}
	b.lastFill = now
}

// TryTake takes a token without blocking.
func (b *Bucket) TryTake() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// reserve takes a token if available, otherwise reports how long until the
// next token appears.
func (b *Bucket) reserve() (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	deficit := 1 - b.tokens
	return false, time.Duration(deficit / b.rate * float64(time.Second))
}

// Wait blocks until a token is taken or ctx is done.
func (b *Bucket) Wait(ctx context.Context) error {
	for {
		ok, wait := b.reserve()
		if ok {
			return nil
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
