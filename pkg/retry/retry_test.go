package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/stretchr/testify/assert"
)

var fast = Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}

func TestRetriesInfrastructureFaultOnce(t *testing.T) {
	calls := 0
	err := ExecuteWithRetry(context.Background(), fast, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("connection reset by peer")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := ExecuteWithRetry(context.Background(), fast, func(ctx context.Context) error {
		calls++
		return errors.New("broken pipe")
	})
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoesNotRetryDomainErrors(t *testing.T) {
	calls := 0
	err := ExecuteWithRetry(context.Background(), fast, func(ctx context.Context) error {
		calls++
		return apperror.NotFound("order")
	})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, 1, calls)

	assert.False(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(apperror.Internal(errors.New("x"))))
	assert.False(t, IsRetryable(nil))
}

func TestPermanentErrorsAreReturnedAtOnce(t *testing.T) {
	notFound := errors.New("order not found")
	calls := 0
	err := ExecuteWithRetry(context.Background(), fast, func(ctx context.Context) error {
		calls++
		return Permanent(notFound)
	})
	assert.Equal(t, notFound, err)
	assert.Equal(t, 1, calls)

	assert.False(t, IsRetryable(Permanent(errors.New("x"))))
	assert.NoError(t, Permanent(nil))
}

func TestBackoffIsCapped(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: 150 * time.Millisecond, BackoffFactor: 2}
	assert.Equal(t, time.Duration(0), Backoff(0, cfg))
	assert.Equal(t, 100*time.Millisecond, Backoff(1, cfg))
	assert.Equal(t, 150*time.Millisecond, Backoff(3, cfg))
}
