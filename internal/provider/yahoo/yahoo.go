// Package yahoo reads batch quotes from the Yahoo Finance v7 quote endpoint.
package yahoo

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

const DefaultEndpoint = "https://query1.finance.yahoo.com/v7/finance/quote"

type Config struct {
	Name string
	URL  string

	// Headers are sent with every request; the endpoint rejects bare clients.
	Headers map[string]string
}

// DefaultHeaders mimic a browser session on finance.yahoo.com.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Origin":          "https://finance.yahoo.com",
		"Referer":         "https://finance.yahoo.com/",
	}
}

type Provider struct {
	cfg    Config
	client httpx.Doer
}

func New(cfg Config, hc httpx.Doer) *Provider {
	if cfg.Name == "" {
		cfg.Name = "yahoo"
	}
	if cfg.URL == "" {
		cfg.URL = DefaultEndpoint
	}
	if cfg.Headers == nil {
		cfg.Headers = DefaultHeaders()
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

// QuoteBatch fetches all symbols in one request. The payload follows the
// order of symbols; symbols absent from the response are omitted.
func (p *Provider) QuoteBatch(ctx context.Context, symbols []string, f httpx.Freshness) market.Result[[]market.Quote] {
	quotes, err := p.fetch(ctx, symbols, f)
	if err != nil {
		return market.Failure[[]market.Quote](market.CodeYahooFailed, err)
	}
	return market.Success(quotes)
}

func (p *Provider) fetch(ctx context.Context, symbols []string, f httpx.Freshness) ([]market.Quote, error) {
	if len(symbols) == 0 {
		return []market.Quote{}, nil
	}
	u, err := url.Parse(p.cfg.URL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("symbols", strings.Join(symbols, ","))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, err
	}
	for k, v := range p.cfg.Headers {
		req.Header.Set(k, v)
	}
	f.Apply(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if !httpx.IsSuccess(resp.StatusCode) {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return nil, fmt.Errorf("GET %s -> %d: %s", u.String(), resp.StatusCode, strings.TrimSpace(string(b)))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var api apiResponse
	if err := dec.Decode(&api); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if api.QuoteResponse.Error != nil && len(api.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("provider error: %v", api.QuoteResponse.Error)
	}

	bySymbol := make(map[string]market.Quote, len(api.QuoteResponse.Result))
	for _, raw := range api.QuoteResponse.Result {
		q, ok := toQuote(raw)
		if !ok {
			continue
		}
		if _, dup := bySymbol[q.Symbol]; !dup {
			bySymbol[q.Symbol] = q
		}
	}

	out := make([]market.Quote, 0, len(symbols))
	for _, s := range symbols {
		if q, ok := bySymbol[s]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

type apiResponse struct {
	QuoteResponse struct {
		Result []map[string]any `json:"result"`
		Error  any              `json:"error"`
	} `json:"quoteResponse"`
}

func toQuote(raw map[string]any) (market.Quote, bool) {
	symbol, _ := raw["symbol"].(string)
	if symbol == "" {
		return market.Quote{}, false
	}
	name, _ := raw["shortName"].(string)
	if name == "" {
		name = symbol
	}
	return market.Quote{
		Symbol:        symbol,
		DisplayName:   name,
		Price:         market.Finite(raw["regularMarketPrice"]),
		Change:        market.Finite(raw["regularMarketChange"]),
		ChangePercent: market.Finite(raw["regularMarketChangePercent"]),
	}, true
}
