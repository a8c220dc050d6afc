package xmlpo

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RateLimitConfig configures provider rate limiting. Zero values take the
// defaults.
type RateLimitConfig struct {
	RequestsPerMinute int // batches per minute, default 60
	BurstSize         int // default RequestsPerMinute
	// MessagesPerMinute caps the number of messages sent per minute across
	// batches. Zero disables the cap.
	MessagesPerMinute int
}

// RateLimiter is a token bucket.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perSec   float64
	last     time.Time
}

// NewRateLimiter returns the request bucket described by cfg, full.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = rpm
	}
	return newBucket(float64(rpm)/60, float64(burst))
}

func newBucket(perSec, capacity float64) *RateLimiter {
	return &RateLimiter{
		tokens:   capacity,
		capacity: capacity,
		perSec:   perSec,
		last:     time.Now(),
	}
}

// Wait takes one token, blocking until it is due or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.WaitN(ctx, 1)
}

// WaitN takes n tokens. A request for more than the bucket holds is clamped
// to its capacity, so one oversized batch waits for a full bucket instead of
// forever.
func (r *RateLimiter) WaitN(ctx context.Context, n int) error {
	for {
		wait, ok := r.reserve(float64(n))
		if ok {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire takes a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	_, ok := r.reserve(1)
	return ok
}

// Available returns the tokens currently in the bucket.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

func (r *RateLimiter) reserve(n float64) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if n > r.capacity {
		n = r.capacity
	}
	if r.tokens >= n {
		r.tokens -= n
		return 0, true
	}
	return time.Duration((n - r.tokens) / r.perSec * float64(time.Second)), false
}

// refill must be called with the lock held.
func (r *RateLimiter) refill() {
	now := time.Now()
	r.tokens += now.Sub(r.last).Seconds() * r.perSec
	r.last = now
	if r.tokens > r.capacity {
		r.tokens = r.capacity
	}
}

// RateLimitedProvider spaces out the batches sent to a provider. Every
// Translate call takes one request token and, when a message budget is
// configured, one message token per text in the batch.
type RateLimitedProvider struct {
	provider AIProvider
	requests *RateLimiter
	messages *RateLimiter
	logger   zerolog.Logger
}

// NewRateLimitedProvider wraps provider.
func NewRateLimitedProvider(provider AIProvider, cfg RateLimitConfig) *RateLimitedProvider {
	p := &RateLimitedProvider{
		provider: provider,
		requests: NewRateLimiter(cfg),
		logger:   log.Logger,
	}
	if cfg.MessagesPerMinute > 0 {
		mpm := float64(cfg.MessagesPerMinute)
		p.messages = newBucket(mpm/60, mpm)
	}
	return p
}

// WithLogger sets the logger used to report throttled calls.
func (p *RateLimitedProvider) WithLogger(logger zerolog.Logger) *RateLimitedProvider {
	p.logger = logger
	return p
}

// Translate implements AIProvider.
func (p *RateLimitedProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	start := time.Now()
	if err := p.requests.Wait(ctx); err != nil {
		return nil, &ProviderError{Message: "rate limit wait cancelled", Cause: err}
	}
	if p.messages != nil {
		if err := p.messages.WaitN(ctx, len(req.Texts)); err != nil {
			return nil, &ProviderError{Message: "message budget wait cancelled", Cause: err}
		}
	}
	if waited := time.Since(start); waited >= 100*time.Millisecond {
		p.logger.Debug().
			Dur("waited", waited).
			Int("messages", len(req.Texts)).
			Msg("Provider call throttled")
	}

	return p.provider.Translate(ctx, req)
}

// Limiter returns the request bucket.
func (p *RateLimitedProvider) Limiter() *RateLimiter {
	return p.requests
}
