package ratelimit_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"marketdash/internal/provider/ratelimit"
)

type countingDoer struct{ calls atomic.Int32 }

func (c *countingDoer) Do(*http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func TestWrap_NoPolicyReturnsNext(t *testing.T) {
	t.Parallel()

	next := &countingDoer{}
	require.Same(t, next, ratelimit.Wrap(next, 0, 0, 0))
}

func TestClient_CancelledContextSkipsUpstream(t *testing.T) {
	t.Parallel()

	next := &countingDoer{}
	c := &ratelimit.Client{Next: next, Limiter: rate.NewLimiter(rate.Every(time.Hour), 1)}

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid", http.NoBody)
	require.NoError(t, err)

	// First call consumes the only token.
	res, err := c.Do(req)
	require.NoError(t, err)
	res.Body.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Do(req.WithContext(ctx))
	require.Error(t, err)
	require.EqualValues(t, 1, next.calls.Load())
}

func TestWrap_BurstAllowsImmediateCalls(t *testing.T) {
	t.Parallel()

	next := &countingDoer{}
	d := ratelimit.Wrap(next, 60, 3, 0)

	for range 3 {
		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "http://example.invalid", http.NoBody)
		require.NoError(t, err)
		res, err := d.Do(req)
		require.NoError(t, err)
		res.Body.Close()
	}
	require.EqualValues(t, 3, next.calls.Load())
}
