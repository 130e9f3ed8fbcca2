package searchapi

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HeaderRetryAfter is the retry-after header (seconds).
const HeaderRetryAfter = "Retry-After"

// RateLimiter throttles searches client-side and honours the service's
// Retry-After after a 429.
type RateLimiter struct {
	mu           sync.Mutex
	bucket       *rate.Limiter // nil when throttling is disabled
	blockedUntil time.Time     // from Retry-After
}

// NewRateLimiter allows perMinute searches per minute with no burst.
// Zero or negative disables proactive throttling.
func NewRateLimiter(perMinute int) *RateLimiter {
	r := &RateLimiter{}
	if perMinute > 0 {
		r.bucket = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	return r
}

// Wait blocks until it's safe to send a search.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	blockedUntil := r.blockedUntil
	r.mu.Unlock()

	if wait := time.Until(blockedUntil); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if r.bucket == nil {
		return nil
	}
	return r.bucket.Wait(ctx)
}

// Observe records a 429 response. It returns how long the service asked
// callers to back off, or zero when it did not say.
func (r *RateLimiter) Observe(resp *http.Response) time.Duration {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return 0
	}

	seconds, err := strconv.Atoi(resp.Header.Get(HeaderRetryAfter))
	if err != nil || seconds <= 0 {
		return 0
	}
	backoff := time.Duration(seconds) * time.Second

	r.mu.Lock()
	defer r.mu.Unlock()
	if until := time.Now().Add(backoff); until.After(r.blockedUntil) {
		r.blockedUntil = until
	}
	return backoff
}

// BlockedUntil returns the end of the current back-off, if any.
func (r *RateLimiter) BlockedUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blockedUntil
}
