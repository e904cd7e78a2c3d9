package client

import (
	"context"
	"time"

	"meallens/internal/apperrors"
)

// backoffBase is the first retry delay; tests shrink it.
var backoffBase = time.Second

// RetryWithBackoff runs op up to maxAttempts times with exponential delays
// (1s, 2s, 4s, ...) between attempts. Only transient error classes are
// retried; authentication and request errors fail immediately, and the last
// failure propagates unchanged.
func RetryWithBackoff[T any](ctx context.Context, maxAttempts int, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if !apperrors.Retryable(err) || attempt == maxAttempts-1 {
			return zero, err
		}

		delay := backoffBase << attempt
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}
