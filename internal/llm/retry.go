package llm

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Backoff schedule: 1s, 2s, 4s between attempts, never more than 10s.
const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 10 * time.Second
	defaultMultiplier = 2.0
)

// transientMarkers is the transport-error vocabulary that justifies a retry.
// An error whose text matches none of these is treated as permanent.
var transientMarkers = []string{
	"network",
	"timeout",
	"connection",
	"fetch",
	"deadline exceeded",
	"eof",
}

// RetryPolicy decides whether a failed attempt is worth repeating and how
// long to wait before doing so. The zero value is not usable; construct via
// NewRetryPolicy.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// NewRetryPolicy returns the default policy: at most 3 retries with capped
// exponential backoff.
func NewRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: defaultMaxRetries,
		BaseDelay:  defaultBaseDelay,
		MaxDelay:   defaultMaxDelay,
		Multiplier: defaultMultiplier,
	}
}

// ShouldRetryStatus reports whether the HTTP status on the given zero-indexed
// attempt warrants another try. Rate limiting and server errors are
// retryable; every other client error fails immediately.
func (p RetryPolicy) ShouldRetryStatus(status, attempt int) bool {
	if attempt >= p.MaxRetries {
		return false
	}
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// ShouldRetryError reports whether a transport-level error warrants another
// try. Only errors matching the known transient vocabulary are retried.
func (p RetryPolicy) ShouldRetryError(err error, attempt int) bool {
	if err == nil || attempt >= p.MaxRetries {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// DelayFor computes the backoff delay for the given zero-indexed attempt.
func (p RetryPolicy) DelayFor(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 0; i < attempt; i++ {
		delay = time.Duration(float64(delay) * p.Multiplier)
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// Sleep waits out the backoff for attempt, returning early when ctx ends.
// This is the only suspension point of the policy.
func (p RetryPolicy) Sleep(ctx context.Context, attempt int) error {
	timer := time.NewTimer(p.DelayFor(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
