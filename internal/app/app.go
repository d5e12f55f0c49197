// Package app wires configuration into the running service graph shared by
// the server and the CLI.
package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"marketdash/internal/aggregate"
	"marketdash/internal/cache"
	"marketdash/internal/config"
	"marketdash/internal/httpx"
	"marketdash/internal/metrics"
	"marketdash/internal/provider/finnhub"
	"marketdash/internal/provider/frankfurter"
	"marketdash/internal/provider/ratelimit"
	"marketdash/internal/provider/stooq"
	"marketdash/internal/provider/yahoo"
	"marketdash/internal/summary"
)

// Facade is what the outer surfaces read from.
type Facade interface {
	aggregate.Board
	Dashboard(ctx context.Context) aggregate.Dashboard
}

type App struct {
	Config     config.Config
	Log        *slog.Logger
	Facade     Facade
	Summarizer *summary.Summarizer
	// Metrics is nil when metrics are disabled.
	Metrics *metrics.Metrics

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{Config: cfg, Log: log}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m, err := metrics.New(reg)
		if err != nil {
			return nil, err
		}
		a.Metrics = m
	}

	base := httpx.New(cfg.UpstreamTimeout())
	doer := func(name string, l config.Limits) httpx.Doer {
		var d httpx.Doer = base
		if a.Metrics != nil {
			d = a.Metrics.Instrument(name, d)
		}
		return ratelimit.Wrap(d, l.MaxRequestsPerMinute, l.Burst, l.MinInterval())
	}

	fx := frankfurter.New(frankfurter.Config{Endpoint: cfg.Frankfurter.Endpoint}, doer("frankfurter", cfg.Frankfurter.Limits))
	yh := yahoo.New(yahoo.Config{URL: cfg.Yahoo.Endpoint, Headers: yahooHeaders(cfg.Yahoo.Headers)}, doer("yahoo", cfg.Yahoo.Limits))
	sq := stooq.New(stooq.Config{URL: cfg.Stooq.Endpoint}, doer("stooq", cfg.Stooq.Limits))
	fh := finnhub.NewClient(cfg.Finnhub.APIKey,
		finnhub.WithBaseURL(cfg.Finnhub.Endpoint),
		finnhub.WithHTTPClient(doer("finnhub", cfg.Finnhub.Limits)),
		finnhub.WithNames(symbolKeys(cfg.Finnhub.Names)),
	)

	var indices aggregate.IndexSource = fh
	if cfg.Market.IndexSource == "yahoo" {
		indices = yh
	} else if cfg.Finnhub.APIKey == "" {
		log.Warn("finnhub is the index source but FINNHUB_API_KEY is not set; index quotes will fail")
	}

	opts := []aggregate.Option{aggregate.WithLogger(log.With("component", "aggregate"))}
	if a.Metrics != nil {
		opts = append(opts, aggregate.WithRecorder(a.Metrics))
	}
	svc := aggregate.New(aggregateConfig(cfg.Market), aggregate.Sources{
		FX:         fx,
		GoldQuotes: yh,
		GoldBars:   sq,
		Indices:    indices,
	}, opts...)

	a.Facade = svc
	if store := a.store(ctx); store != nil {
		fc := cache.New(svc, store, time.Duration(cfg.Cache.TTLSec)*time.Second, log.With("component", "cache"))
		fc.LoadTimeout = cfg.RequestTimeout()
		a.Facade = fc
	}

	a.Summarizer = summary.New(summary.Config{
		APIKey:  cfg.Summary.APIKey,
		BaseURL: cfg.Summary.BaseURL,
		Model:   cfg.Summary.Model,
		Timeout: time.Duration(cfg.Summary.TimeoutSec) * time.Second,
	}, log.With("component", "summary"))

	return a, nil
}

// store returns nil when caching is off. An unreachable redis disables
// caching rather than failing startup.
func (a *App) store(ctx context.Context) cache.Store {
	c := a.Config.Cache
	if c.TTLSec <= 0 {
		return nil
	}
	switch c.Backend {
	case "memory":
		return cache.NewMemory(c.MaxItems)
	case "redis":
		client, err := cache.DialRedis(ctx, c.Redis.Addr, c.Redis.Password, c.Redis.DB)
		if err != nil {
			a.Log.Warn("redis unavailable, running without cache", "addr", c.Redis.Addr, "error", err)
			return nil
		}
		a.closers = append(a.closers, client.Close)
		return cache.NewRedis(client, c.Redis.Prefix)
	default:
		return nil
	}
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func aggregateConfig(m config.Market) aggregate.Config {
	pairs := make([]aggregate.Pair, 0, len(m.Pairs))
	for _, p := range m.Pairs {
		pairs = append(pairs, aggregate.Pair{Code: p.Code, Name: p.Name})
	}
	fresh := httpx.Bypass()
	if m.FreshnessSec > 0 {
		fresh = httpx.TTL(time.Duration(m.FreshnessSec) * time.Second)
	}
	return aggregate.Config{
		Base:             m.Base,
		Pairs:            pairs,
		ConvertTo:        m.ConvertTo,
		Lookback:         m.LookbackDays,
		GoldSources:      m.GoldSources,
		GoldYahooSymbols: m.GoldYahooSymbols,
		GoldStooqSymbol:  m.GoldStooqSymbol,
		IndexSymbols:     m.IndexSymbols,
		Freshness:        fresh,
	}
}

// symbolKeys upper-cases map keys, which the config loader folds to lower case.
func symbolKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToUpper(k)] = v
	}
	return out
}

// yahooHeaders layers configured headers over the browser defaults.
func yahooHeaders(extra map[string]string) map[string]string {
	h := yahoo.DefaultHeaders()
	for k, v := range extra {
		h[k] = v
	}
	return h
}
