package util

import (
	"context"
	"time"
)

// Retry calls fn up to maxAttempts times with exponential backoff starting at
// baseDelay and returns the first successful value, or the last error if all
// attempts fail. The function respects context cancellation between retries.
// A maxAttempts below one is treated as one.
func Retry[T any](ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var (
		val T
		err error
	)
	delay := baseDelay

	for attempt := 0; attempt < maxAttempts; attempt++ {
		val, err = fn(ctx)
		if err == nil {
			return val, nil
		}

		// Don't sleep after the last failed attempt.
		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				var zero T
				return zero, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return val, err
}
