// Package httputil holds helpers for calls to remote services.
//
// [Retry] re-runs an operation with exponential backoff when it fails with
// a [RetryableError]. Any other error ends the loop immediately, and so does
// cancellation of the context:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := model.GenerateContent(ctx, msgs)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// A rate-limited failure ([errors.RateLimitedError] with RetryAfter set)
// waits for the advertised interval instead of the backoff delay.
package httputil
