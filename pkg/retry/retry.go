// Package retry re-runs idempotent reads that failed on an infrastructure
// fault. Writes are never retried.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/hugohenrick/arte-ideas/pkg/apperror"
)

// Config tunes ExecuteWithRetry
type Config struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Jitter        bool
}

// ReadConfig retries a failed read exactly once
var ReadConfig = Config{
	MaxAttempts:   2,
	InitialDelay:  50 * time.Millisecond,
	MaxDelay:      500 * time.Millisecond,
	BackoffFactor: 2.0,
	Jitter:        true,
}

// Backoff returns the delay before the given attempt (1-based)
func Backoff(attempt int, cfg Config) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt-1))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter {
		delay *= 0.8 + rand.Float64()*0.4
	}
	return time.Duration(delay)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as final so ExecuteWithRetry returns it at once.
// A nil err stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsRetryable reports whether err is an infrastructure fault. Domain errors,
// errors marked Permanent and deadline expiry are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr.Kind == apperror.KindInternal
	}
	return true
}

// ExecuteWithRetry runs fn until it succeeds, fails with a final error, or
// the attempts are exhausted.
func ExecuteWithRetry(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(Backoff(attempt-1, cfg)):
			}
		}
		err = fn(ctx)
		if !IsRetryable(err) {
			return unwrapPermanent(err)
		}
	}
	return err
}

func unwrapPermanent(err error) error {
	var perm *permanentError
	if errors.As(err, &perm) {
		return perm.err
	}
	return err
}
