package xlate

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_BurstThenBlocks(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 60, BurstSize: 2})

	if !r.TryAcquire() || !r.TryAcquire() {
		t.Fatal("burst tokens should be available immediately")
	}
	if r.TryAcquire() {
		t.Error("third acquire should fail with an empty bucket")
	}
}

func TestRateLimiter_Refills(t *testing.T) {
	// 600 RPM = one token per 100ms.
	r := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 600, BurstSize: 1})

	if !r.TryAcquire() {
		t.Fatal("initial token should be available")
	}
	if r.TryAcquire() {
		t.Fatal("bucket should be empty")
	}

	time.Sleep(150 * time.Millisecond)
	if !r.TryAcquire() {
		t.Error("token should have refilled")
	}
}

func TestRateLimiter_MinInterval(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 6000,
		BurstSize:         10,
		MinInterval:       50 * time.Millisecond,
	})

	if !r.TryAcquire() {
		t.Fatal("first acquire should succeed")
	}
	if r.TryAcquire() {
		t.Error("second acquire should be blocked by the minimum spacing")
	}

	start := time.Now()
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Wait returned after %v, expected it to honor the spacing", elapsed)
	}
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 60, BurstSize: 1})
	r.TryAcquire() // drain

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := r.Wait(ctx); err == nil {
		t.Error("Wait should fail when the context expires first")
	}
}

func TestRateLimitedProvider(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, RateLimitConfig{RequestsPerMinute: 6000, BurstSize: 5})

	result, err := p.Translate(context.Background(), Request{Text: "hello"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if result != "hola" {
		t.Errorf("result = %q", result)
	}
	if p.Limiter().Available() >= 5 {
		t.Error("a token should have been consumed")
	}
}

func TestRateLimitedProvider_CancelledWait(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, RateLimitConfig{RequestsPerMinute: 60, BurstSize: 1})
	p.Limiter().TryAcquire() // drain

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Translate(ctx, Request{Text: "hello"})
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 0 {
		t.Errorf("provider called %d times while rate limited", inner.calls)
	}
}
