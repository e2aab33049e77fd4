package retry

// Retry policy shared by the session authenticator (unbounded by default)
// and the wallet linker (a fixed number of attempts, no delay).
// Delays use exponential backoff with full jitter.

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Options describes a retry policy.
// MaxAttempts counts every call of fn, the first one included; 0 means unlimited.
// A zero BaseDelay retries immediately.
type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Retryable decides whether an error is worth another attempt.
	// nil retries everything except context errors and Permanent errors.
	Retryable func(error) bool
}

// Unlimited reports whether the policy never gives up on its own.
func (o Options) Unlimited() bool { return o.MaxAttempts <= 0 }

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not retryable. Do returns the wrapped error unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsRetryable is the default classification.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var pe *permanentError
	if errors.As(err, &pe) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func clamp(d, max time.Duration) time.Duration {
	if max > 0 && d > max {
		return max
	}
	return d
}

// FullJitterSleep picks a random delay in [0, min(maxDelay, baseDelay*2^attempt)].
func FullJitterSleep(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if baseDelay <= 0 {
		return 0
	}
	// past 2^30 the shift overflows; the cap applies long before that anyway
	if attempt > 30 {
		attempt = 30
	}
	maxForAttempt := clamp(baseDelay<<attempt, maxDelay)
	if maxForAttempt <= 0 {
		maxForAttempt = maxDelay
	}
	if maxForAttempt <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(maxForAttempt) + 1))
}

// Do calls fn until it succeeds, the policy is exhausted, the error is not
// retryable or ctx is done. attempt starts at 1.
func Do(ctx context.Context, opts Options, fn func(attempt int) error) error {
	retryable := opts.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	var lastErr error
	for attempt := 1; opts.Unlimited() || attempt <= opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		var pe *permanentError
		if errors.As(err, &pe) {
			return pe.err
		}
		if !retryable(err) {
			return err
		}
		if !opts.Unlimited() && attempt == opts.MaxAttempts {
			break
		}

		sleep := FullJitterSleep(attempt-1, opts.BaseDelay, opts.MaxDelay)
		if sleep <= 0 {
			continue
		}
		t := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			t.Stop()
			return lastErr
		case <-t.C:
		}
	}
	return lastErr
}
