package aggregate

import (
	"context"

	"marketdash/internal/market"
	"marketdash/internal/provider"
)

// IndexQuotes returns quotes for symbols, or the configured defaults when
// symbols is empty. Batch sources get a single call; per-symbol sources are
// called in order and symbols whose fetch fails are left out. A quote that
// arrives without a price is kept with a null price.
func (s *Service) IndexQuotes(ctx context.Context, symbols []string) market.Result[[]market.Quote] {
	if len(symbols) == 0 {
		symbols = s.cfg.IndexSymbols
	}
	src := s.src.Indices
	if src == nil {
		s.log.Warn("index quotes requested without a source")
		return record(s, "indices", market.Failure[[]market.Quote](market.CodeFinnhubFailed, ErrNoIndexSource))
	}
	if c, ok := src.(provider.Credentialed); ok {
		if code, missing := c.MissingCredential(); missing {
			s.log.Warn("index source has no credential", "provider", src.Name())
			return record(s, "indices", market.Failure[[]market.Quote](code, nil))
		}
	}

	switch q := src.(type) {
	case provider.BatchQuoter:
		r := q.QuoteBatch(ctx, symbols, s.cfg.Freshness)
		if !r.OK {
			s.upstreamFailed(q.Name(), r.ErrorCode, r.Cause)
		}
		return record(s, "indices", r)
	case provider.Quoter:
		out := make([]market.Quote, 0, len(symbols))
		for _, sym := range symbols {
			r := q.Quote(ctx, sym, s.cfg.Freshness)
			if !r.OK {
				s.log.Warn("symbol omitted", "provider", q.Name(), "symbol", sym, "code", string(r.ErrorCode), "error", r.Cause)
				continue
			}
			out = append(out, r.Payload)
		}
		return record(s, "indices", market.Success(out))
	default:
		s.log.Error("index source cannot quote", "provider", src.Name())
		return record(s, "indices", market.Failure[[]market.Quote](market.CodeFinnhubFailed, ErrNoIndexSource))
	}
}
