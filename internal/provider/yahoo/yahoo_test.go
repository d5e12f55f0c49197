package yahoo_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketdash/internal/httpx"
	"marketdash/internal/market"
	"marketdash/internal/provider/yahoo"
)

func newProvider(t *testing.T, h http.HandlerFunc) *yahoo.Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return yahoo.New(yahoo.Config{URL: srv.URL + "/v7/finance/quote"}, httpx.New(2*time.Second))
}

func TestQuoteBatch_OneRequest_RequestOrderPreserved(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "^GSPC,^NDX,^KS11", r.URL.Query().Get("symbols"))
		require.Equal(t, "https://finance.yahoo.com/", r.Header.Get("Referer"))
		io.WriteString(w, `{"quoteResponse":{"result":[
			{"symbol":"^KS11","shortName":"KOSPI Composite Index","regularMarketPrice":2563.4,"regularMarketChange":-12.1,"regularMarketChangePercent":-0.47},
			{"symbol":"^GSPC","shortName":"S&P 500","regularMarketPrice":5918.25,"regularMarketChange":20.5,"regularMarketChangePercent":0.35},
			{"symbol":"^NDX","regularMarketPrice":"n/a"}
		],"error":null}}`)
	})

	res := p.QuoteBatch(t.Context(), []string{"^GSPC", "^NDX", "^KS11"}, httpx.Bypass())
	require.True(t, res.OK, "cause: %v", res.Cause)
	require.EqualValues(t, 1, calls.Load())
	require.Len(t, res.Payload, 3)

	require.Equal(t, "^GSPC", res.Payload[0].Symbol)
	require.Equal(t, "S&P 500", res.Payload[0].DisplayName)
	require.InEpsilon(t, 5918.25, *res.Payload[0].Price, 1e-9)

	require.Equal(t, "^NDX", res.Payload[1].Symbol)
	require.Equal(t, "^NDX", res.Payload[1].DisplayName)
	require.Nil(t, res.Payload[1].Price)

	require.Equal(t, "^KS11", res.Payload[2].Symbol)
	require.InEpsilon(t, -0.47, *res.Payload[2].ChangePercent, 1e-9)
}

func TestQuoteBatch_UnknownSymbolsOmitted(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"quoteResponse":{"result":[{"symbol":"GC=F","regularMarketPrice":2650.1}],"error":null}}`)
	})

	res := p.QuoteBatch(t.Context(), []string{"XAUUSD=X", "GC=F"}, httpx.Bypass())
	require.True(t, res.OK)
	require.Len(t, res.Payload, 1)
	require.Equal(t, "GC=F", res.Payload[0].Symbol)
}

func TestQuoteBatch_StatusFailure(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"finance":{"error":{"code":"Unauthorized"}}}`, http.StatusUnauthorized)
	})

	res := p.QuoteBatch(t.Context(), []string{"^GSPC"}, httpx.Bypass())
	require.False(t, res.OK)
	require.Equal(t, market.CodeYahooFailed, res.ErrorCode)
	require.ErrorContains(t, res.Cause, "401")
}

func TestQuoteBatch_ProviderErrorWithoutResults(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"quoteResponse":{"result":[],"error":{"code":"Bad Request"}}}`)
	})

	res := p.QuoteBatch(t.Context(), []string{"^GSPC"}, httpx.Bypass())
	require.False(t, res.OK)
	require.Equal(t, market.CodeYahooFailed, res.ErrorCode)
}

func TestQuoteBatch_EmptySymbolsNoRequest(t *testing.T) {
	t.Parallel()

	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL)
	})

	res := p.QuoteBatch(t.Context(), nil, httpx.Bypass())
	require.True(t, res.OK)
	require.Empty(t, res.Payload)
}
