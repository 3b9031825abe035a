package common

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Retry runs fn with capped exponential backoff. Only errors wrapped with
// retry.RetryableError are retried; any other error stops the loop.
func Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(5, retry.NewExponential(100*time.Millisecond))
	return retry.Do(ctx, b, fn)
}

// RetryAll is like Retry but treats every error from fn as retryable.
// Used for startup probes (e.g. waiting for the database to accept
// connections).
func RetryAll(ctx context.Context, fn func(ctx context.Context) error) error {
	return Retry(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
