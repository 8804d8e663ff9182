package resilience

import (
	"context"
	"errors"
	"time"
)

// RetryConfig tunes retry behavior with exponential backoff.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns the standard retry policy for outbound calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks an error as not retryable. Retry returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry executes op, retrying on error with exponential backoff until
// MaxAttempts is reached, the context is cancelled, or the error is marked
// Permanent.
func Retry(ctx context.Context, config RetryConfig, op func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	backoff := config.InitialBackoff

	var result interface{}
	var err error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		result, err = op(ctx)
		if err == nil {
			return result, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return nil, perm.err
		}

		if attempt == config.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	return nil, err
}

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}
