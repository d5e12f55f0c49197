// Package cache keeps recent successful façade results warm.
package cache

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"marketdash/internal/aggregate"
	"marketdash/internal/market"
)

const (
	keyFX      = "fx"
	keyGold    = "gold"
	keyIndices = "indices:"
)

// Facade serves board results from Store for TTL. Failures are never stored,
// and concurrent misses on one key share a single upstream aggregation that
// is detached from any one caller's cancellation and bounded by LoadTimeout.
// Store errors fall through to the wrapped board.
type Facade struct {
	Next        aggregate.Board
	Store       Store
	TTL         time.Duration
	LoadTimeout time.Duration
	Log         *slog.Logger

	group singleflight.Group
}

func New(next aggregate.Board, store Store, ttl time.Duration, log *slog.Logger) *Facade {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Facade{Next: next, Store: store, TTL: ttl, Log: log}
}

func (f *Facade) ExchangeRates(ctx context.Context) market.Result[aggregate.FXBoard] {
	return cached(ctx, f, keyFX, f.Next.ExchangeRates)
}

func (f *Facade) GoldPrice(ctx context.Context) market.Result[aggregate.GoldPrice] {
	return cached(ctx, f, keyGold, f.Next.GoldPrice)
}

func (f *Facade) IndexQuotes(ctx context.Context, symbols []string) market.Result[[]market.Quote] {
	return cached(ctx, f, keyIndices+strings.Join(symbols, ","), func(ctx context.Context) market.Result[[]market.Quote] {
		return f.Next.IndexQuotes(ctx, symbols)
	})
}

func (f *Facade) Dashboard(ctx context.Context) aggregate.Dashboard {
	return aggregate.Collect(ctx, f, nil)
}

func cached[T any](ctx context.Context, f *Facade, key string, load func(context.Context) market.Result[T]) market.Result[T] {
	if f.Store == nil || f.TTL <= 0 {
		return load(ctx)
	}
	if r, ok := lookup[T](ctx, f, key); ok {
		return r
	}
	ch := f.group.DoChan(key, func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		if f.LoadTimeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(lctx, f.LoadTimeout)
			defer cancel()
		}
		if r, ok := lookup[T](lctx, f, key); ok {
			return r, nil
		}
		r := load(lctx)
		if r.OK {
			b, err := json.Marshal(r)
			if err == nil {
				err = f.Store.Set(lctx, key, b, f.TTL)
			}
			if err != nil {
				f.Log.Warn("cache store failed", "key", key, "error", err)
			}
		}
		return r, nil
	})
	select {
	case res := <-ch:
		return res.Val.(market.Result[T])
	case <-ctx.Done():
		// A caller that gives up gets the result of its own context; the
		// shared load carries on for the others.
		return load(ctx)
	}
}

func lookup[T any](ctx context.Context, f *Facade, key string) (market.Result[T], bool) {
	var r market.Result[T]
	b, ok, err := f.Store.Get(ctx, key)
	if err != nil {
		f.Log.Warn("cache lookup failed", "key", key, "error", err)
		return r, false
	}
	if !ok {
		return r, false
	}
	if err := json.Unmarshal(b, &r); err != nil || !r.OK {
		f.Log.Warn("cache entry unreadable", "key", key, "error", err)
		return market.Result[T]{}, false
	}
	return r, true
}
