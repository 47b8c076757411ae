package httputil

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/handscript/pkg/errors"
)

// RetryableError marks a failure as transient.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError]. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is, or wraps, a [RetryableError].
func IsRetryable(err error) bool {
	return stderrors.As(err, new(*RetryableError))
}

// MaxRetryAfter caps the wait requested by a rate-limited failure.
const MaxRetryAfter = time.Minute

// Retry runs fn up to attempts times. Only retryable errors are retried;
// the delay doubles after each failure. It returns the last error, or
// ctx.Err() when the context ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			wait := delay
			var rl *errors.RateLimitedError
			if stderrors.As(lastErr, &rl) && rl.RetryAfter > 0 {
				wait = min(time.Duration(rl.RetryAfter)*time.Second, MaxRetryAfter)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				delay *= 2
			}
		}
	}
	return lastErr
}
