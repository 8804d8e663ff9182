package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0

	result, err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) (interface{}, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	sentinel := errors.New("still down")

	_, err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) (interface{}, error) {
		attempts++
		return nil, sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	attempts := 0
	sentinel := errors.New("rejected")

	_, err := Retry(context.Background(), fastRetryConfig(), func(ctx context.Context) (interface{}, error) {
		attempts++
		return nil, Permanent(sentinel)
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, attempts)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Retry(ctx, fastRetryConfig(), func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
