package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartupRetrierRetriesPlainErrorsUntilSuccess(t *testing.T) {
	var retries int
	retrier := StartupRetrier(
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(2*time.Millisecond),
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			retries++
		}),
	)

	attempts := 0
	err := retrier.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			// Plain errors, not Retryable-wrapped: the startup preset
			// retries everything because driver errors at boot are not
			// wrapped by anyone.
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, retries, "OnRetry fires once per retry, not per attempt")
}

func TestStartupRetrierExhaustsAttempts(t *testing.T) {
	retrier := StartupRetrier(
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(2*time.Millisecond),
	)

	boom := errors.New("still down")
	attempts := 0
	err := retrier.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 5, attempts)
}

func TestStartupRetrierStopsOnPermanentError(t *testing.T) {
	retrier := StartupRetrier(
		WithInitialDelay(time.Millisecond),
	)

	bad := errors.New("invalid connection string")
	attempts := 0
	err := retrier.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Permanent(bad)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, bad)
	assert.Equal(t, 1, attempts)
}

func TestDefaultRetrierOnlyRetriesRetryableErrors(t *testing.T) {
	retrier := New(WithInitialDelay(time.Millisecond))

	attempts := 0
	err := retrier.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("plain failure")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts, "unwrapped errors are not retried by default")
}
