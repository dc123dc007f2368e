package xlate

import (
	"context"
	"sync"
	"time"
)

// RateLimiter controls the rate of provider requests using a token bucket,
// plus an optional minimum spacing between consecutive calls for providers
// whose quota is expressed as inter-request delay rather than throughput.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	minGap     time.Duration
	lastCall   time.Time
	mu         sync.Mutex
}

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int           // Maximum requests per minute
	BurstSize         int           // Maximum burst size (default: same as RPM)
	MinInterval       time.Duration // Minimum spacing between calls (0 = none)
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60 // Default: 60 RPM
	}

	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm // Default burst = RPM
	}

	return &RateLimiter{
		tokens:     burst, // Start with full bucket
		maxTokens:  burst,
		refillRate: rpm / 60.0, // Convert to tokens per second
		lastRefill: time.Now(),
		minGap:     cfg.MinInterval,
	}
}

// Wait blocks until a token is available, the minimum inter-call spacing has
// elapsed, or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if ok, gap := r.tryAcquire(); ok {
			return nil
		} else if gap > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(gap):
			}
			continue
		}

		// Wait for the next token to refill
		r.mu.Lock()
		waitTime := time.Duration(float64(time.Second) / r.refillRate)
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
			// Try again
		}
	}
}

// TryAcquire attempts to acquire a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	ok, _ := r.tryAcquire()
	return ok
}

// tryAcquire reports whether a call may proceed now. When blocked only by
// inter-call spacing, it returns the remaining gap to wait.
func (r *RateLimiter) tryAcquire() (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	if r.tokens < 1 {
		return false, 0
	}

	if r.minGap > 0 {
		if since := time.Since(r.lastCall); since < r.minGap {
			return false, r.minGap - since
		}
	}

	r.tokens--
	r.lastCall = time.Now()
	return true, 0
}

// refill adds tokens based on elapsed time (must be called with lock held).
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now

	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}

// Available returns the current number of available tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

// RateLimitedProvider wraps a Provider with rate limiting.
type RateLimitedProvider struct {
	provider Provider
	limiter  *RateLimiter
}

// NewRateLimitedProvider creates a new rate-limited provider.
func NewRateLimitedProvider(provider Provider, cfg RateLimitConfig) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		limiter:  NewRateLimiter(cfg),
	}
}

// Translate implements Provider with rate limiting.
func (p *RateLimitedProvider) Translate(ctx context.Context, req Request) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", &ProviderError{
			Message:   "rate limit wait cancelled",
			Cause:     err,
			Retryable: false,
		}
	}

	return p.provider.Translate(ctx, req)
}

// Limiter returns the underlying rate limiter for inspection.
func (p *RateLimitedProvider) Limiter() *RateLimiter {
	return p.limiter
}
