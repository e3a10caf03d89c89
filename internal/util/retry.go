// ABOUTME: Retry utilities for embedding API calls with exponential backoff
// ABOUTME: Backoff doubles per attempt with jitter; WithRetry drives the loop
package util

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// maxBackoff caps the delay between attempts
const maxBackoff = 30 * time.Second

// CalculateBackoff returns exponential backoff with jitter
// Base delay is doubled each attempt, with random jitter up to 25%
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in bit shift (max 30 for safety)
	if attempt > 30 {
		attempt = 30
	}
	// Exponential: 2^attempt * base
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	// Add jitter: -25% to +25% using auto-seeded math/rand/v2. A backoff
	// under 2ns has no jitter window at all (Int64N rejects 0)
	if half := int64(backoff) / 2; half > 0 {
		backoff += time.Duration(rand.Int64N(half)) - backoff/4
	}
	return backoff
}

// WithRetry runs op up to maxRetries+1 times with backoff between attempts.
// A cancelled context stops further attempts; the last operation error is
// wrapped in the returned error.
func WithRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, op func(ctx context.Context) error) error {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(CalculateBackoff(baseDelay, attempt)):
			case <-ctx.Done():
				return fmt.Errorf("retry aborted after %d attempts: %w", attempts, lastErr)
			}
		}

		err := op(ctx)
		attempts++
		if err == nil {
			return nil
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
		if ctx.Err() != nil {
			break
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
