package services

import (
	"context"
	"fmt"
	"log"
	"time"
)

// retry runs fn up to attempts times, doubling the wait after every failure.
// It stops early when ctx is done.
func retry[T any](ctx context.Context, attempts int, initialDelay time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	if attempts < 1 {
		attempts = 1
	}

	delay := initialDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		log.Printf("⚠️  Attempt %d/%d failed: %v. Retrying in %s...\n", attempt, attempts, err, delay)

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return zero, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
