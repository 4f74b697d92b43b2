package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTryTakeRespectsBurst(t *testing.T) {
	b := NewBucket(1, 3)
	for i := 0; i < 3; i++ {
		if !b.TryTake() {
			t.Fatalf("token %d should be available within burst", i)
		}
	}
	if b.TryTake() {
		t.Fatal("bucket should be empty after burst drained")
	}
}

func TestRefillOverTime(t *testing.T) {
	b := NewBucket(10, 1)
	if !b.TryTake() {
		t.Fatal("initial token missing")
	}
	// Move the clock forward instead of sleeping.
	fake := time.Now()
	b.now = func() time.Time { return fake }
	b.mu.Lock()
	b.lastFill = fake.Add(-200 * time.Millisecond)
	b.mu.Unlock()
	if !b.TryTake() {
		t.Fatal("expected a refilled token after 200ms at 10/s")
	}
}

// Across N concurrent callers exceeding the quota, the observed rate never
// exceeds the configured tokens-per-interval and nobody is dropped.
func TestWaitBoundsObservedRate(t *testing.T) {
	const (
		rate    = 50.0
		burst   = 5
		callers = 30
	)
	b := NewBucket(rate, burst)
	var done int32
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Wait(context.Background()); err != nil {
				t.Errorf("Wait: %v", err)
				return
			}
			atomic.AddInt32(&done, 1)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	if got := atomic.LoadInt32(&done); got != callers {
		t.Fatalf("completed = %d, want %d (no call may be dropped)", got, callers)
	}
	// burst tokens are free; the rest must have waited for refill.
	minElapsed := time.Duration(float64(callers-burst)/rate*float64(time.Second)) - 50*time.Millisecond
	if elapsed < minElapsed {
		t.Errorf("elapsed %v is faster than the quota allows (min %v)", elapsed, minElapsed)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	b := NewBucket(0.001, 1)
	if !b.TryTake() {
		t.Fatal("initial token missing")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := b.Wait(ctx); err == nil {
		t.Fatal("expected deadline error from Wait")
	}
}
