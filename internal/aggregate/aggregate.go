// Package aggregate combines the upstream adapters into dashboard boards.
// Expected failures never escape: every operation returns a market.Result.
package aggregate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"marketdash/internal/httpx"
	"marketdash/internal/market"
	"marketdash/internal/provider"
	"marketdash/internal/resolve"
)

const (
	SourceYahoo = "yahoo"
	SourceStooq = "stooq"
)

var (
	ErrNoIndexSource = errors.New("aggregate: no index source configured")
	ErrNoFXSource    = errors.New("aggregate: no fx source configured")
)

type Config struct {
	Base      string
	Pairs     []Pair
	ConvertTo string
	Lookback  int

	GoldSources      []string
	GoldYahooSymbols []string
	GoldStooqSymbol  string

	IndexSymbols []string
	Freshness    httpx.Freshness
}

func DefaultConfig() Config {
	return Config{
		Base: "USD",
		Pairs: []Pair{
			{Code: "KRW", Name: "USD/KRW"},
			{Code: "JPY", Name: "USD/JPY"},
			{Code: "EUR", Name: "USD/EUR"},
		},
		ConvertTo:        "KRW",
		Lookback:         resolve.DefaultLookback,
		GoldSources:      []string{SourceYahoo, SourceStooq},
		GoldYahooSymbols: []string{"XAUUSD=X", "GC=F"},
		GoldStooqSymbol:  "gc.f",
		IndexSymbols:     []string{"SPY", "QQQ", "DIA", "EWY"},
		Freshness:        httpx.Bypass(),
	}
}

// Sources are the adapters the service reads from. Indices must implement
// provider.BatchQuoter or provider.Quoter; batch wins when both are present.
type Sources struct {
	FX         provider.RateSource
	GoldQuotes provider.BatchQuoter
	GoldBars   provider.BarSource
	Indices    IndexSource
}

type IndexSource interface {
	Name() string
}

// Recorder observes the outcome of each façade operation.
type Recorder interface {
	ObserveResult(operation string, ok bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveResult(string, bool) {}

type Service struct {
	cfg      Config
	src      Sources
	log      *slog.Logger
	recorder Recorder
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithClock overrides the source of "today" for fallbacks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(cfg Config, src Sources, opts ...Option) *Service {
	def := DefaultConfig()
	if cfg.Base == "" {
		cfg.Base = def.Base
	}
	if len(cfg.Pairs) == 0 {
		cfg.Pairs = def.Pairs
	}
	if cfg.ConvertTo == "" {
		cfg.ConvertTo = def.ConvertTo
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = def.Lookback
	}
	if len(cfg.GoldSources) == 0 {
		cfg.GoldSources = def.GoldSources
	}
	if len(cfg.GoldYahooSymbols) == 0 {
		cfg.GoldYahooSymbols = def.GoldYahooSymbols
	}
	if cfg.GoldStooqSymbol == "" {
		cfg.GoldStooqSymbol = def.GoldStooqSymbol
	}
	if len(cfg.IndexSymbols) == 0 {
		cfg.IndexSymbols = def.IndexSymbols
	}
	s := &Service{
		cfg:      cfg,
		src:      src,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) today() market.Date { return market.DateOf(s.now()) }

func (s *Service) pairCodes() []string {
	codes := make([]string, 0, len(s.cfg.Pairs))
	for _, p := range s.cfg.Pairs {
		codes = append(codes, p.Code)
	}
	return codes
}

func (s *Service) upstreamFailed(provider string, code market.Code, cause error) {
	s.log.Warn("upstream failed", "provider", provider, "code", string(code), "error", cause)
}

func record[T any](s *Service, op string, r market.Result[T]) market.Result[T] {
	s.recorder.ObserveResult(op, r.OK)
	return r
}

// Board is the read side shared by Service and its caching wrappers.
type Board interface {
	ExchangeRates(ctx context.Context) market.Result[FXBoard]
	GoldPrice(ctx context.Context) market.Result[GoldPrice]
	IndexQuotes(ctx context.Context, symbols []string) market.Result[[]market.Quote]
}

// Collect runs the three boards concurrently and joins them.
func Collect(ctx context.Context, b Board, symbols []string) Dashboard {
	var (
		d Dashboard
		g errgroup.Group
	)
	g.Go(func() error {
		d.FX = b.ExchangeRates(ctx)
		return nil
	})
	g.Go(func() error {
		d.Gold = b.GoldPrice(ctx)
		return nil
	})
	g.Go(func() error {
		d.Indices = b.IndexQuotes(ctx, symbols)
		return nil
	})
	_ = g.Wait()
	return d
}

// Dashboard fetches FX, gold and the default index list in parallel.
func (s *Service) Dashboard(ctx context.Context) Dashboard {
	return Collect(ctx, s, nil)
}
