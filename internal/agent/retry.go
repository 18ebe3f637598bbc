package agent

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryPolicy doubles the wait from initial on every retry, without jitter,
// and gives up after maxRetries retries or when ctx is done.
func retryPolicy(ctx context.Context, initial time.Duration, maxRetries int) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = time.Duration(math.MaxInt64)
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx)
}
