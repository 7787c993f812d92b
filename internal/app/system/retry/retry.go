// Package retry provides a reusable retry policy for calls to external
// services.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy controls how an operation is retried. The zero value is not
// usable; construct with the fields set or use Default.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is multiplied by the attempt number for the wait
	// between tries: BaseDelay after attempt 1, 2*BaseDelay after
	// attempt 2, and so on.
	BaseDelay time.Duration

	// Retryable reports whether an error is worth another attempt.
	// Nil means every error is retryable.
	Retryable func(error) bool
}

// Default is the policy used for object-store uploads.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// Do runs op until it succeeds, the policy is exhausted, the error is
// not retryable, or ctx is done. The returned error is the last
// attempt's error, annotated with the attempt count when all attempts
// were used up.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}

		if err = op(ctx); err == nil {
			return nil
		}

		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		if wait := p.BaseDelay * time.Duration(attempt); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
