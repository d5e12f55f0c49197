package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"

	"marketdash/internal/httpx"
	"marketdash/internal/market"
)

// ErrMissingKey is the cause reported when no API token is configured.
var ErrMissingKey = errors.New("finnhub: api key not configured")

// Quote retrieves the current quote for one symbol.
func (c *Client) Quote(ctx context.Context, symbol string, f httpx.Freshness) market.Result[market.Quote] {
	q, err := c.quote(ctx, symbol, f)
	if err != nil {
		return market.Failure[market.Quote](market.CodeFinnhubFailed, err)
	}
	return market.Success(q)
}

func (c *Client) quote(ctx context.Context, symbol string, f httpx.Freshness) (market.Quote, error) {
	if !c.hasKey {
		return market.Quote{}, ErrMissingKey
	}

	query := maps.Clone(c.query)
	query.Set("symbol", symbol)

	url := fmt.Sprintf("%s/quote?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return market.Quote{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Accept", "application/json")
	f.Apply(req)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return market.Quote{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusUnauthorized, http.StatusForbidden:
		return market.Quote{}, fmt.Errorf("unauthorized for symbol %s", symbol)

	case http.StatusTooManyRequests:
		return market.Quote{}, fmt.Errorf("rate limited for symbol %s", symbol)

	default:
		return market.Quote{}, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	// {
	//   "c": 512.34,  current price
	//   "d": 1.23,    change
	//   "dp": 0.24,   percent change
	//   "h": 513, "l": 508.1, "o": 509.2, "pc": 511.11, "t": 1736539200
	// }
	var body map[string]any
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return market.Quote{}, fmt.Errorf("decoding quote response: %w", err)
	}

	name := c.names[symbol]
	if name == "" {
		name = symbol
	}
	return market.Quote{
		Symbol:        symbol,
		DisplayName:   name,
		Price:         market.Finite(body["c"]),
		Change:        market.Finite(body["d"]),
		ChangePercent: market.Finite(body["dp"]),
	}, nil
}
