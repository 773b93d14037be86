package transfuse

import (
	"context"
	"time"
)

// RetryConfig holds configuration for retry behavior around State Store
// calls (a real retryable I/O boundary once the store is networked, e.g.
// state.RedisStore).
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig returns sensible defaults for retrying State Store
// operations.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   5 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes fn with exponential backoff, retrying only errors
// IsRetryable considers transient.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		if attempt < cfg.MaxRetries {
			delay := cfg.BaseDelay * time.Duration(1<<attempt)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}

// IsRetryable reports whether err represents a transient State Store
// failure worth retrying. A StateError is retryable unless its cause is
// a context cancellation.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var stateErr *StateError
	if ok := asStateError(err, &stateErr); ok {
		if stateErr.Cause == context.Canceled || stateErr.Cause == context.DeadlineExceeded {
			return false
		}
		return true
	}
	return false
}

func asStateError(err error, target **StateError) bool {
	for err != nil {
		if se, ok := err.(*StateError); ok {
			*target = se
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// RetryingStore wraps a StateStore with retry logic around Style and
// StyleByHash, the two calls that cross a real I/O boundary in a
// networked backing such as state.RedisStore.
type RetryingStore struct {
	Store  StateStore
	Config RetryConfig
}

// NewRetryingStore wraps store with the given retry configuration.
func NewRetryingStore(store StateStore, cfg RetryConfig) *RetryingStore {
	return &RetryingStore{Store: store, Config: cfg}
}

func (r *RetryingStore) Style(kind, open, close string) (string, error) {
	return WithRetry(context.Background(), r.Config, func() (string, error) {
		return r.Store.Style(kind, open, close)
	})
}

func (r *RetryingStore) StyleByHash(kind, hash string) (string, string, bool, error) {
	type result struct {
		open, close string
		ok          bool
	}
	res, err := WithRetry(context.Background(), r.Config, func() (result, error) {
		open, close, ok, err := r.Store.StyleByHash(kind, hash)
		return result{open, close, ok}, err
	})
	return res.open, res.close, res.ok, err
}

func (r *RetryingStore) Begin() error  { return r.Store.Begin() }
func (r *RetryingStore) Commit() error { return r.Store.Commit() }
func (r *RetryingStore) Format() string {
	return r.Store.Format()
}
func (r *RetryingStore) SetFormat(format string) {
	r.Store.SetFormat(format)
}
