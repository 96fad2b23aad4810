package connectors

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Backoff returns the delay before retry number attempt (1-based).
func Backoff(attempt int) time.Duration {
	return time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
}

// Retry calls fn up to attempts times, sleeping with exponential backoff
// between failures. ErrNotFound and context errors are not retried.
func Retry(ctx context.Context, attempts int, sleep func(time.Duration), fn func() error) error {
	if attempts <= 0 {
		attempts = 1
	}
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrNotFound) || errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}
		if attempt < attempts {
			sleep(Backoff(attempt))
		}
	}
	return lastErr
}
