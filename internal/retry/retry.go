// Package retry runs network operations under a fixed-delay retry policy.
package retry

import (
	"context"
	"time"

	retrygo "github.com/avast/retry-go/v4"
)

// Policy bounds how often and how fast an operation is retried.
type Policy struct {
	Attempts uint          // total tries, including the first
	Wait     time.Duration // fixed delay between tries

	// OnRetry, if set, is called after each recoverable failure with the
	// 1-based number of the try that failed.
	OnRetry func(attempt uint, err error)
}

// DefaultPolicy is three tries five seconds apart.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, Wait: 5 * time.Second}
}

// Do runs op until it succeeds, returns an unrecoverable error, the context
// ends, or the policy's attempts are used up. The last error is returned.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	attempts := p.Attempts
	if attempts == 0 {
		attempts = 1
	}
	opts := []retrygo.Option{
		retrygo.Context(ctx),
		retrygo.Attempts(attempts),
		retrygo.Delay(p.Wait),
		retrygo.DelayType(retrygo.FixedDelay),
		retrygo.LastErrorOnly(true),
	}
	if p.OnRetry != nil {
		opts = append(opts, retrygo.OnRetry(func(n uint, err error) {
			p.OnRetry(n+1, err)
		}))
	}
	return retrygo.DoWithData(func() (T, error) {
		return op(ctx)
	}, opts...)
}

// Unrecoverable marks err so that Do stops retrying immediately.
func Unrecoverable(err error) error {
	return retrygo.Unrecoverable(err)
}
