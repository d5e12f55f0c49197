// Package stooq reads the latest daily bar from Stooq's CSV quote feed.
package stooq

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"marketdash/internal/httpx"
	"marketdash/internal/market"
)

const DefaultEndpoint = "https://stooq.com/q/l/"

// Column layout requested with f=sd2t2ohlcv.
const (
	colSymbol = iota
	colDate
	colTime
	colOpen
	colHigh
	colLow
	colClose
	colVolume
)

var ErrNoRows = errors.New("stooq: no data row")

type Config struct {
	URL string
}

type Provider struct {
	cfg    Config
	client httpx.Doer
}

func New(cfg Config, hc httpx.Doer) *Provider {
	if cfg.URL == "" {
		cfg.URL = DefaultEndpoint
	}
	return &Provider{cfg: cfg, client: hc}
}

// Latest fetches the most recent bar for symbol (e.g. "gc.f" for gold futures).
func (p *Provider) Latest(ctx context.Context, symbol string, f httpx.Freshness) market.Result[market.Bar] {
	bar, err := p.fetch(ctx, symbol, f)
	if err != nil {
		return market.Failure[market.Bar](market.CodeStooqFailed, err)
	}
	return market.Success(bar)
}

func (p *Provider) fetch(ctx context.Context, symbol string, f httpx.Freshness) (market.Bar, error) {
	u, err := url.Parse(p.cfg.URL)
	if err != nil {
		return market.Bar{}, err
	}
	q := u.Query()
	q.Set("s", symbol)
	q.Set("f", "sd2t2ohlcv")
	q.Set("h", "")
	q.Set("e", "csv")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return market.Bar{}, err
	}
	req.Header.Set("Accept", "text/csv")
	f.Apply(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return market.Bar{}, err
	}
	defer resp.Body.Close()
	if !httpx.IsSuccess(resp.StatusCode) {
		return market.Bar{}, fmt.Errorf("GET %s -> %d", u.String(), resp.StatusCode)
	}
	return parse(io.LimitReader(resp.Body, 64<<10))
}

// parse reads a header line plus one data line. Cells that are not numbers
// (Stooq writes "N/D" when it has nothing) become nil.
func parse(r io.Reader) (market.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return market.Bar{}, fmt.Errorf("decode csv: %w", err)
	}
	if len(rows) < 2 {
		return market.Bar{}, ErrNoRows
	}
	cols := rows[1]
	if len(cols) <= colClose {
		return market.Bar{}, fmt.Errorf("stooq: want at least %d columns, got %d", colClose+1, len(cols))
	}
	bar := market.Bar{
		Symbol: cols[colSymbol],
		Date:   cols[colDate],
		Time:   cols[colTime],
		Open:   cell(cols, colOpen),
		High:   cell(cols, colHigh),
		Low:    cell(cols, colLow),
		Close:  cell(cols, colClose),
		Volume: cell(cols, colVolume),
	}
	return bar, nil
}

func cell(cols []string, i int) *float64 {
	if i >= len(cols) {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cols[i]), 64)
	if err != nil {
		return nil
	}
	return market.FiniteFloat(v)
}
