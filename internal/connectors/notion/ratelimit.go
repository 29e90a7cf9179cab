package notion

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outgoing requests with a token bucket.
// It wraps the transport beneath the retrying client, so every attempt,
// retries included, takes a token.
type RateLimiter struct {
	bucket *rate.Limiter
	next   http.RoundTripper
}

// NewRateLimiter creates a limiter allowing rps requests per second
// with a burst of one.
func NewRateLimiter(rps float64, next http.RoundTripper) *RateLimiter {
	if next == nil {
		next = http.DefaultTransport
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(rps), 1),
		next:   next,
	}
}

// RoundTrip waits for a token, then forwards the request.
func (r *RateLimiter) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := r.bucket.Wait(req.Context()); err != nil {
		return nil, err
	}
	return r.next.RoundTrip(req)
}
