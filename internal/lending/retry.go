// internal/lending/retry.go
package lending

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"biblioteka/internal/storage"
)

const (
	retryMaxAttempts  = 5
	retryBaseDelay    = 10 * time.Millisecond
	retryJitterFactor = 0.3
)

// retryOnConflict runs fn with exponential backoff, retrying only
// storage.ErrConflict. That error means the check-then-insert aborted before
// committing, so re-running it is safe. Every other error fails fast:
// retrying an admission rejection would change its meaning, and retrying a
// timeout during overload only makes the overload worse.
//
// Schedule: immediate, 10ms, 20ms, 40ms, 80ms (plus up to 30% jitter).
func retryOnConflict(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < retryMaxAttempts; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-1))
			jitter := time.Duration(rand.Float64() * float64(delay) * retryJitterFactor)

			select {
			case <-time.After(delay + jitter):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, storage.ErrConflict) {
			return lastErr
		}
	}

	return lastErr
}
