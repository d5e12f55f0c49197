package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"marketdash/internal/app"
	"marketdash/internal/config"
)

func testApp(t *testing.T) *app.App {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fx/latest":
			io.WriteString(w, `{"amount":1,"base":"USD","date":"2025-01-06","rates":{"KRW":1470}}`)
		case "/yahoo":
			io.WriteString(w, `{"quoteResponse":{"result":[{"symbol":"XAUUSD=X","regularMarketPrice":2650}]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Metrics.Enabled = false
	cfg.Frankfurter.Endpoint = srv.URL + "/fx"
	cfg.Yahoo.Endpoint = srv.URL + "/yahoo"
	cfg.Stooq.Endpoint = srv.URL + "/stooq"
	a, err := app.New(t.Context(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return a
}

func TestRun_Gold(t *testing.T) {
	out, err := run(t.Context(), testApp(t), "gold", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, write(&buf, out))
	require.JSONEq(t, `{"ok":true,"payload":{"usdPerOunce":2650,"krwPerOunce":3895500,"asOfDate":"2025-01-06","source":"yahoo"}}`, buf.String())
}

func TestRun_SummaryWithoutKeyUsesRules(t *testing.T) {
	out, err := run(t.Context(), testApp(t), "summary", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, write(&buf, out))
	require.Contains(t, buf.String(), `"source": "rules"`)
	require.Contains(t, buf.String(), "1470")
}

func TestRun_Unknown(t *testing.T) {
	_, err := run(t.Context(), testApp(t), "bonds", nil)
	require.Error(t, err)
}
