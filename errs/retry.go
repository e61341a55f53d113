package errs

import (
	"context"
	"math/rand"
	"time"
)

// RetryPolicy is a bounded exponential backoff with jitter, wrapped
// around transient I/O failures in the Workspace (spec §4.J). No
// third-party backoff library is used: none of the retrieved repos
// import one (each hand-rolls backoff inline where it needs it at all),
// so this stays a small stdlib combinator in the same spirit — see
// DESIGN.md.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches spec §4.J's "bounded exponential backoff
// with jitter" for transient Workspace I/O.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    500 * time.Millisecond,
	}
}

// Do runs fn, retrying only when it returns a Retriable *Error, up to
// MaxAttempts, honoring ctx's deadline. Logical errors propagate on the
// first attempt (spec §7: "never retries logical errors"). Expiry before
// a final attempt raises TimeoutError.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := p.BaseDelay
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			jittered := time.Duration(float64(delay) * (0.5 + rand.Float64()))
			timer := time.NewTimer(jittered)
			select {
			case <-ctx.Done():
				timer.Stop()
				return Wrap(KindTimeoutError, "retry deadline exceeded", ctx.Err())
			case <-timer.C:
			}
			delay *= 2
			if delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var codedErr *Error
		if casted, ok := err.(*Error); ok {
			codedErr = casted
		}
		if codedErr == nil || !codedErr.Retriable() {
			return err
		}
	}
	return lastErr
}
