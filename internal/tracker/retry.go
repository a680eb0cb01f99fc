package tracker

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy bounds the retry behavior for transient service failures.
type Policy struct {
	// MaxAttempts is the total number of tries including the first.
	// Values below 2 disable retrying.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt; later waits grow
	// exponentially.
	BaseDelay time.Duration
}

// DefaultPolicy retries twice with exponential backoff starting at one
// second, enough to ride out brief rate limits and server hiccups
// without stalling an ingestion pass.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: time.Second}

// withRetry runs op under the client's retry policy. Only errors
// classified transient by IsTransient are retried; everything else is
// returned immediately.
func (c *Client) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	if c.retry.MaxAttempts <= 1 {
		return op(ctx)
	}

	backoff := retry.WithMaxRetries(uint64(c.retry.MaxAttempts-1), retry.NewExponential(c.retry.BaseDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op(ctx)
		if err != nil && IsTransient(err) {
			c.logger.Debug("retrying transient failure", "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}
