package transfuse

import (
	"context"
	"sync"
	"time"
)

// RateLimiter controls the rate of State Store requests using a token
// bucket algorithm, bounding how fast a networked backing (state.RedisStore)
// is hit across concurrently processed documents.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerSecond int
	BurstSize         int
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rps := float64(cfg.RequestsPerSecond)
	if rps <= 0 {
		rps = 200
	}
	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rps
	}
	return &RateLimiter{
		tokens:     burst,
		maxTokens:  burst,
		refillRate: rps,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.TryAcquire() {
			return nil
		}
		r.mu.Lock()
		waitTime := time.Duration(float64(time.Second) / r.refillRate)
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// TryAcquire attempts to acquire a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

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

// RateLimitedStore wraps a StateStore with rate limiting on Style and
// StyleByHash.
type RateLimitedStore struct {
	Store   StateStore
	limiter *RateLimiter
}

// NewRateLimitedStore creates a rate-limited StateStore wrapper.
func NewRateLimitedStore(store StateStore, cfg RateLimitConfig) *RateLimitedStore {
	return &RateLimitedStore{Store: store, limiter: NewRateLimiter(cfg)}
}

func (s *RateLimitedStore) Style(kind, open, close string) (string, error) {
	if err := s.limiter.Wait(context.Background()); err != nil {
		return "", &StateError{Op: "style", Cause: err}
	}
	return s.Store.Style(kind, open, close)
}

func (s *RateLimitedStore) StyleByHash(kind, hash string) (string, string, bool, error) {
	if err := s.limiter.Wait(context.Background()); err != nil {
		return "", "", false, &StateError{Op: "styleByHash", Cause: err}
	}
	return s.Store.StyleByHash(kind, hash)
}

func (s *RateLimitedStore) Begin() error   { return s.Store.Begin() }
func (s *RateLimitedStore) Commit() error  { return s.Store.Commit() }
func (s *RateLimitedStore) Format() string { return s.Store.Format() }
func (s *RateLimitedStore) SetFormat(format string) {
	s.Store.SetFormat(format)
}

// Limiter returns the underlying rate limiter for inspection.
func (s *RateLimitedStore) Limiter() *RateLimiter {
	return s.limiter
}
