package engine

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Backoff controls retry pacing. Wait doubles per attempt, capped at Cap.
type Backoff struct {
	Attempts int // retries after the first try
	Base     time.Duration
	Cap      time.Duration
}

// DefaultBackoff covers the YouTube and timedtext endpoints well enough.
var DefaultBackoff = Backoff{Attempts: 3, Base: 500 * time.Millisecond, Cap: 10 * time.Second}

// Retry runs fn until it succeeds, returns a permanent error, or the
// attempt budget is spent. Context cancellation wins over everything.
func Retry[T any](ctx context.Context, b Backoff, fn func() (T, error)) (T, error) {
	var zero T

	wait := b.Base
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !isTransient(err) || attempt >= b.Attempts {
			return zero, err
		}

		slog.Debug("transient error, backing off",
			slog.Int("attempt", attempt+1), slog.Duration("wait", wait), slog.Any("error", err))
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}
		if wait *= 2; wait > b.Cap {
			wait = b.Cap
		}
	}
}

// RetryHTTP wraps Retry for HTTP calls, treating 429 and 5xx responses as
// transient. The body of a retried response is closed here.
func RetryHTTP(ctx context.Context, b Backoff, fn func() (*http.Response, error)) (*http.Response, error) {
	return Retry(ctx, b, func() (*http.Response, error) {
		resp, err := fn()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, &transientStatusError{code: resp.StatusCode}
		}
		return resp, nil
	})
}

type transientStatusError struct {
	code int
}

func (e *transientStatusError) Error() string {
	return http.StatusText(e.code)
}

// isTransient reports whether an error is worth another attempt: retryable
// HTTP statuses, connection and DNS failures, and timeouts.
func isTransient(err error) bool {
	var statusErr *transientStatusError
	if errors.As(err, &statusErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
