package httpx_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketdash/internal/httpx"
)

func TestFreshness_BypassHeaders(t *testing.T) {
	t.Parallel()

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid", http.NoBody)
	require.NoError(t, err)

	httpx.Bypass().Apply(req)
	require.Equal(t, "no-cache, no-store, max-age=0", req.Header.Get("Cache-Control"))
	require.Equal(t, "no-cache", req.Header.Get("Pragma"))
	require.Equal(t, "bypass", httpx.Bypass().String())
}

func TestFreshness_TTLHeaders(t *testing.T) {
	t.Parallel()

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid", http.NoBody)
	require.NoError(t, err)

	f := httpx.TTL(600 * time.Second)
	f.Apply(req)
	require.False(t, f.IsBypass())
	require.Equal(t, "max-age=600", req.Header.Get("Cache-Control"))
	require.Empty(t, req.Header.Get("Pragma"))

	require.True(t, httpx.TTL(0).IsBypass())
	require.True(t, httpx.TTL(-time.Second).IsBypass())
}

func TestClient_DefaultHeaders(t *testing.T) {
	t.Parallel()

	seen := make(chan http.Header, 1)
	srv := newServer(t, func(r *http.Request) { seen <- r.Header.Clone() })

	c := httpx.New(2 * time.Second)
	c.Headers = map[string]string{"Accept": "application/json", "X-Keep": "default"}

	req, err := http.NewRequest(http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("X-Keep", "explicit")

	res, err := c.Do(req)
	require.NoError(t, err)
	res.Body.Close()

	got := <-seen
	require.Equal(t, "marketdash/1.0", got.Get("User-Agent"))
	require.Equal(t, "application/json", got.Get("Accept"))
	require.Equal(t, "explicit", got.Get("X-Keep"))
}
