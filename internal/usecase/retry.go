package usecase

import (
	"context"
	"time"

	"booking-core/internal/client"
)

// withRetry runs fn up to attempts times, backing off exponentially between
// tries. Only transient downstream failures are retried; validation-style
// errors come back immediately.
func withRetry(ctx context.Context, attempts int, backoff time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff << (i - 1)):
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !client.IsTransient(err) {
			return err
		}
	}
	return err
}
