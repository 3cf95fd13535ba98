// Package httputil provides transport helpers for the PBX API client.
//
// # Retry
//
// [Retry] re-runs an operation when it fails with a [RetryableError]. Wrap
// transient failures (connection resets, 5xx responses) with
// [Retryable]; any other error is returned immediately:
//
//	err := httputil.Retry(ctx, 2, 500*time.Millisecond, func() error {
//	    return fetch(ctx)
//	})
//
// The delay doubles after each failed attempt. Cancelling ctx aborts the wait.
//
// # Rate limiting
//
// [Limiter] caps the request rate sent to one upstream. A zero rate disables
// limiting so that callers can always hold a non-nil limiter:
//
//	lim := httputil.NewLimiter(20, 5) // 20 req/s, burst 5
//	if err := lim.Wait(ctx); err != nil {
//	    return err
//	}
package httputil
