// Package retry provides a bounded, fixed-delay retry wrapper for
// destination upload calls.
//
// The retryability predicate may mutate a captured draft of the next
// attempt's input. Destination adapters use this for one-shot degraded-mode
// fallbacks: the predicate flips a visibility flag or substitutes a
// placeholder asset, marks the fallback as spent, and never fires again.
package retry

import (
	"context"
	"time"
)

// Policy wraps a single operation with bounded retries and a fixed delay
// between attempts. Delay is fixed rather than exponential: destination
// protocols here fail fast on quota and permission errors, and a second
// attempt either succeeds with degraded input or not at all.
type Policy struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int

	// InitialDelay is the fixed wait between attempts.
	InitialDelay time.Duration

	// IsRetryable decides whether a failure is worth another attempt. It
	// may have side effects on the next attempt's input.
	IsRetryable func(err error) bool

	// OnRetry, when set, observes each retry before the delay elapses.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Do invokes op, consulting IsRetryable on each failure, until op succeeds,
// the policy is exhausted, or the context is canceled. The last error is
// surfaced when all attempts fail.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if attempt >= p.MaxRetries {
			return err
		}
		if p.IsRetryable != nil && !p.IsRetryable(err) {
			return err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err, p.InitialDelay)
		}
		if werr := wait(ctx, p.InitialDelay); werr != nil {
			return err
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
