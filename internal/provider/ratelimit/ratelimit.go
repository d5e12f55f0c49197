package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"marketdash/internal/httpx"
)

// Client gates an upstream HTTP client behind a token bucket.
// Waiting honors the request context; an expired context fails the call
// without touching the network.
type Client struct {
	Next    httpx.Doer
	Limiter *rate.Limiter
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	return c.Next.Do(req)
}

// Wrap applies the first configured policy to next: requests per minute
// with burst, else a minimum interval between calls, else nothing.
func Wrap(next httpx.Doer, maxPerMinute, burst int, minInterval time.Duration) httpx.Doer {
	switch {
	case maxPerMinute > 0:
		if burst <= 0 {
			burst = 1
		}
		return &Client{Next: next, Limiter: rate.NewLimiter(rate.Limit(float64(maxPerMinute)/60.0), burst)}
	case minInterval > 0:
		return &Client{Next: next, Limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
	default:
		return next
	}
}
