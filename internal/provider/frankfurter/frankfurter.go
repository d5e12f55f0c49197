// Package frankfurter reads currency rates from the Frankfurter API.
// The service publishes no data on weekends and ECB holidays.
package frankfurter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"marketdash/internal/httpx"
	"marketdash/internal/market"
)

const DefaultEndpoint = "https://api.frankfurter.app"

type Config struct {
	Endpoint string
}

type Client struct {
	cfg  Config
	http httpx.Doer
}

func New(cfg Config, hc httpx.Doer) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &Client{cfg: cfg, http: hc}
}

// Latest fetches the most recent published rates.
func (c *Client) Latest(ctx context.Context, base string, symbols []string, f httpx.Freshness) market.Result[market.RateObservation] {
	obs, err := c.fetch(ctx, "latest", base, symbols, f)
	if err != nil {
		return market.Failure[market.RateObservation](market.CodeFXLatestFailed, err)
	}
	return market.Success(obs)
}

// OnDate fetches the rates published for one calendar day.
func (c *Client) OnDate(ctx context.Context, date market.Date, base string, symbols []string, f httpx.Freshness) market.Result[market.RateObservation] {
	obs, err := c.fetch(ctx, date.String(), base, symbols, f)
	if err != nil {
		return market.Failure[market.RateObservation](market.CodeFXHistoryFailed, err)
	}
	return market.Success(obs)
}

func (c *Client) fetch(ctx context.Context, path, base string, symbols []string, f httpx.Freshness) (market.RateObservation, error) {
	q := url.Values{}
	q.Set("from", base)
	if len(symbols) > 0 {
		q.Set("to", strings.Join(symbols, ","))
	}
	u := fmt.Sprintf("%s/%s?%s", c.cfg.Endpoint, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return market.RateObservation{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	f.Apply(req)

	res, err := c.http.Do(req)
	if err != nil {
		return market.RateObservation{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()
	if !httpx.IsSuccess(res.StatusCode) {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
		return market.RateObservation{}, fmt.Errorf("GET %s -> %d: %s", u, res.StatusCode, strings.TrimSpace(string(b)))
	}

	var body apiResponse
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return market.RateObservation{}, fmt.Errorf("decode: %w", err)
	}
	return body.observation(base)
}

// apiResponse mirrors {"amount":1.0,"base":"USD","date":"2025-01-03","rates":{"KRW":1470.5}}.
// Rates are decoded loosely so one malformed entry cannot spoil the rest.
type apiResponse struct {
	Amount json.Number    `json:"amount"`
	Base   string         `json:"base"`
	Date   string         `json:"date"`
	Rates  map[string]any `json:"rates"`
}

func (r apiResponse) observation(requestedBase string) (market.RateObservation, error) {
	date, err := market.ParseDate(r.Date)
	if err != nil {
		return market.RateObservation{}, err
	}
	base := r.Base
	if base == "" {
		base = requestedBase
	}
	rates := make(map[string]float64, len(r.Rates))
	for code, raw := range r.Rates {
		if v := market.Finite(raw); v != nil {
			rates[strings.ToUpper(code)] = *v
		}
	}
	return market.RateObservation{AsOfDate: date, Base: base, Rates: rates}, nil
}
