package stooq_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketdash/internal/httpx"
	"marketdash/internal/market"
	"marketdash/internal/provider/stooq"
)

func newProvider(t *testing.T, h http.HandlerFunc) *stooq.Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return stooq.New(stooq.Config{URL: srv.URL + "/q/l/"}, httpx.New(2*time.Second))
}

func TestLatest_ParsesCloseColumn(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "gc.f", r.URL.Query().Get("s"))
		require.Equal(t, "sd2t2ohlcv", r.URL.Query().Get("f"))
		require.Equal(t, "csv", r.URL.Query().Get("e"))
		io.WriteString(w, "Symbol,Date,Time,Open,High,Low,Close,Volume\r\nGC.F,2025-01-03,22:59:58,2669.2,2672.4,2641.0,2654.9,161230\r\n")
	})

	res := p.Latest(t.Context(), "gc.f", httpx.Bypass())
	require.True(t, res.OK, "cause: %v", res.Cause)
	require.Equal(t, "GC.F", res.Payload.Symbol)
	require.Equal(t, "2025-01-03", res.Payload.Date)
	require.InEpsilon(t, 2654.9, *res.Payload.Close, 1e-9)
	require.InEpsilon(t, 2669.2, *res.Payload.Open, 1e-9)
	require.InEpsilon(t, 161230.0, *res.Payload.Volume, 1e-9)
}

func TestLatest_NoDataCellsAreNil(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "Symbol,Date,Time,Open,High,Low,Close,Volume\nGC.F,N/D,N/D,N/D,N/D,N/D,N/D,N/D\n")
	})

	res := p.Latest(t.Context(), "gc.f", httpx.Bypass())
	require.True(t, res.OK)
	require.Nil(t, res.Payload.Close)
	require.Nil(t, res.Payload.Volume)
}

func TestLatest_HeaderOnly(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "Symbol,Date,Time,Open,High,Low,Close,Volume\n")
	})

	res := p.Latest(t.Context(), "gc.f", httpx.Bypass())
	require.False(t, res.OK)
	require.Equal(t, market.CodeStooqFailed, res.ErrorCode)
	require.ErrorIs(t, res.Cause, stooq.ErrNoRows)
}

func TestLatest_ShortRow(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "Symbol,Date\nGC.F,2025-01-03\n")
	})

	res := p.Latest(t.Context(), "gc.f", httpx.Bypass())
	require.False(t, res.OK)
	require.Equal(t, market.CodeStooqFailed, res.ErrorCode)
}

func TestLatest_StatusFailure(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	res := p.Latest(t.Context(), "gc.f", httpx.Bypass())
	require.False(t, res.OK)
	require.Equal(t, market.CodeStooqFailed, res.ErrorCode)
}
