package provider

import (
	"context"

	"marketdash/internal/httpx"
	"marketdash/internal/market"
)

// RateSource serves dated currency-rate observations.
type RateSource interface {
	Latest(ctx context.Context, base string, symbols []string, f httpx.Freshness) market.Result[market.RateObservation]
	OnDate(ctx context.Context, date market.Date, base string, symbols []string, f httpx.Freshness) market.Result[market.RateObservation]
}

// Quoter fetches one symbol per upstream call.
type Quoter interface {
	Name() string
	Quote(ctx context.Context, symbol string, f httpx.Freshness) market.Result[market.Quote]
}

// BatchQuoter fetches many symbols in one upstream call. Symbols the
// provider does not know are left out of the payload.
type BatchQuoter interface {
	Name() string
	QuoteBatch(ctx context.Context, symbols []string, f httpx.Freshness) market.Result[[]market.Quote]
}

// Credentialed is implemented by sources that cannot work without an API key.
type Credentialed interface {
	// MissingCredential returns the failure code to report when no key is configured.
	MissingCredential() (market.Code, bool)
}

// BarSource serves the latest daily bar for a symbol.
type BarSource interface {
	Latest(ctx context.Context, symbol string, f httpx.Freshness) market.Result[market.Bar]
}
