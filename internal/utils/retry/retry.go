// Package retry provides bounded exponential backoff for adapter calls.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"time"

	"github.com/google/go-github/v60/github"
)

// Config holds configuration for exponential backoff retry.
type Config struct {
	MaxRetries  int           // Maximum number of retry attempts (default: 5)
	BaseDelay   time.Duration // Initial delay before first retry (default: 1s)
	MaxDelay    time.Duration // Maximum delay cap (default: 60s)
	JitterRatio float64       // Jitter as fraction of delay, 0.0-1.0 (default: 0.25)
}

// DefaultConfig returns sensible defaults for tracker API retries.
// Defaults: 5 retries, 1s base delay, 60s max delay, 25% jitter.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  5,
		BaseDelay:   1 * time.Second,
		MaxDelay:    60 * time.Second,
		JitterRatio: 0.25,
	}
}

// temporary is implemented by adapter errors that may succeed on retry.
type temporary interface {
	Temporary() bool
}

// retryAfterer is implemented by errors carrying a server-signaled wait.
type retryAfterer interface {
	RetryAfter() time.Duration
}

// Retryable reports whether err is a transient adapter error that warrants a
// retry. It uses typed checking rather than string matching:
//   - go-github rate limit and abuse errors are always retryable.
//   - go-github *ErrorResponse is retryable for 429 and 5xx.
//   - errors exposing Temporary() decide for themselves.
//   - network timeouts are retryable.
//
// Client errors (4xx other than 429) are not retried.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		code := respErr.Response.StatusCode
		return code == 429 || (code >= 500 && code < 600)
	}

	var tmp temporary
	if errors.As(err, &tmp) {
		return tmp.Temporary()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// serverDelay returns the wait the server asked for, if any.
func serverDelay(err error) time.Duration {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return time.Until(rateErr.Rate.Reset.Time)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.RetryAfter != nil {
		return *abuseErr.RetryAfter
	}
	var ra retryAfterer
	if errors.As(err, &ra) {
		return ra.RetryAfter()
	}
	return 0
}

// Do executes fn with exponential backoff. It retries only on transient
// errors; non-retryable errors are returned immediately so callers see them
// without unnecessary delay. A rate-limit response with a signaled wait is
// honored in place of the computed delay and counts against the same budget.
func Do[T any](ctx context.Context, cfg Config, operation string, fn func() (T, error)) (T, error) {
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		if !Retryable(err) {
			return zero, err
		}

		if attempt == cfg.MaxRetries {
			return zero, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, err)
		}

		// Calculate delay: base * 2^attempt, add jitter, then cap.
		delay := time.Duration(float64(cfg.BaseDelay) * math.Pow(2, float64(attempt)))
		if cfg.JitterRatio > 0 {
			delay += time.Duration(rand.Float64() * cfg.JitterRatio * float64(delay))
		}
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
		if wait := serverDelay(err); wait > delay {
			delay = wait
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%s: context cancelled during retry: %w", operation, ctx.Err())
		case <-time.After(delay):
			// continue to next attempt
		}
	}

	return zero, fmt.Errorf("%s: retry loop exited unexpectedly", operation)
}
