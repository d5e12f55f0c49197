package aggregate_test

import (
	"context"
	"errors"
	"sync"

	"marketdash/internal/httpx"
	"marketdash/internal/market"
)

var errUpstream = errors.New("upstream down")

type fakeRates struct {
	mu      sync.Mutex
	latest  market.Result[market.RateObservation]
	byDate  map[string]market.Result[market.RateObservation]
	probed  []string
	latests int
}

func (f *fakeRates) Latest(_ context.Context, _ string, _ []string, _ httpx.Freshness) market.Result[market.RateObservation] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latests++
	return f.latest
}

func (f *fakeRates) OnDate(_ context.Context, d market.Date, _ string, _ []string, _ httpx.Freshness) market.Result[market.RateObservation] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probed = append(f.probed, d.String())
	if r, ok := f.byDate[d.String()]; ok {
		return r
	}
	return market.Failure[market.RateObservation](market.CodeFXHistoryFailed, errUpstream)
}

func observation(date string, rates map[string]float64) market.RateObservation {
	return market.RateObservation{AsOfDate: market.MustDate(date), Base: "USD", Rates: rates}
}

type fakeBatch struct {
	mu     sync.Mutex
	name   string
	result market.Result[[]market.Quote]
	calls  int
	asked  [][]string
}

func (f *fakeBatch) Name() string { return f.name }

func (f *fakeBatch) QuoteBatch(_ context.Context, symbols []string, _ httpx.Freshness) market.Result[[]market.Quote] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.asked = append(f.asked, symbols)
	return f.result
}

type fakeBars struct {
	result market.Result[market.Bar]
	calls  int
}

func (f *fakeBars) Latest(context.Context, string, httpx.Freshness) market.Result[market.Bar] {
	f.calls++
	return f.result
}

type fakeQuoter struct {
	quotes  map[string]market.Result[market.Quote]
	asked   []string
	missing bool
}

func (f *fakeQuoter) Name() string { return "finnhub" }

func (f *fakeQuoter) Quote(_ context.Context, symbol string, _ httpx.Freshness) market.Result[market.Quote] {
	f.asked = append(f.asked, symbol)
	if r, ok := f.quotes[symbol]; ok {
		return r
	}
	return market.Failure[market.Quote](market.CodeFinnhubFailed, errUpstream)
}

func (f *fakeQuoter) MissingCredential() (market.Code, bool) {
	return market.CodeFinnhubFailed, f.missing
}

func quote(symbol string, price float64) market.Quote {
	return market.Quote{Symbol: symbol, DisplayName: symbol, Price: market.Float(price)}
}

type recorder struct {
	mu   sync.Mutex
	seen map[string][]bool
}

func (r *recorder) ObserveResult(op string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen == nil {
		r.seen = map[string][]bool{}
	}
	r.seen[op] = append(r.seen[op], ok)
}
