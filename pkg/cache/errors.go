package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for caching operations.
var (
	// ErrNotFound is returned when a requested item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned when a remote backend cannot be reached.
	ErrNetwork = errors.New("network error")
)

// RetryableError marks an error that a [Backoff] should retry.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was wrapped with [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// IsNetwork reports whether err means a remote backend was unreachable.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// Backoff is a retry policy for connecting to Redis and MongoDB. The delay
// doubles after every failed attempt.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBackoff tries three times, waiting one and then two seconds.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Retry calls fn until it succeeds, returns an error not marked
// [Retryable], or the attempts run out. A zero Backoff means
// [DefaultBackoff].
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	if b.Attempts <= 0 {
		b = DefaultBackoff
	}
	delay := b.Delay
	var lastErr error
	for i := 0; i < b.Attempts; i++ {
		if lastErr = fn(); lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if i == b.Attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return lastErr
}

// RetryWithBackoff retries fn with [DefaultBackoff].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Retry(ctx, fn)
}
