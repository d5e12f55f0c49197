package aggregate

import (
	"context"

	"github.com/shopspring/decimal"

	"marketdash/internal/market"
	"marketdash/internal/resolve"
)

// GoldPrice resolves the USD spot price across the configured sources and
// converts it with a fresh rate. It always succeeds; missing data, including
// a missing FX source, shows up as zero values.
func (s *Service) GoldPrice(ctx context.Context) market.Result[GoldPrice] {
	spot := resolve.FirstFinite(ctx, s.goldCandidates()...)
	if spot.Value == nil {
		s.log.Warn("no gold price from any source", "sources", s.cfg.GoldSources)
		return record(s, "gold", market.Success(GoldPrice{AsOfDate: s.today()}))
	}

	usd := decimal.NewFromFloat(*spot.Value)
	out := GoldPrice{
		USDPerOunce: usd.Round(2).InexactFloat64(),
		AsOfDate:    s.today(),
		Source:      spot.Source,
	}

	if s.src.FX == nil {
		s.log.Warn("gold conversion skipped, no fx source")
		return record(s, "gold", market.Success(out))
	}
	fx := s.src.FX.Latest(ctx, s.cfg.Base, []string{s.cfg.ConvertTo}, s.cfg.Freshness)
	if !fx.OK {
		s.upstreamFailed("frankfurter", fx.ErrorCode, fx.Cause)
		return record(s, "gold", market.Success(out))
	}
	if rate := fx.Payload.Rate(s.cfg.ConvertTo); rate != nil {
		out.KRWPerOunce = usd.Mul(decimal.NewFromFloat(*rate)).Round(0).InexactFloat64()
		if !fx.Payload.AsOfDate.IsZero() {
			out.AsOfDate = fx.Payload.AsOfDate
		}
	}
	return record(s, "gold", market.Success(out))
}

func (s *Service) goldCandidates() []resolve.Candidate {
	out := make([]resolve.Candidate, 0, len(s.cfg.GoldSources))
	for _, name := range s.cfg.GoldSources {
		switch name {
		case SourceYahoo:
			if s.src.GoldQuotes != nil {
				out = append(out, resolve.Candidate{Name: name, Fetch: s.goldFromQuotes})
			}
		case SourceStooq:
			if s.src.GoldBars != nil {
				out = append(out, resolve.Candidate{Name: name, Fetch: s.goldFromBars})
			}
		default:
			s.log.Warn("unknown gold source", "source", name)
		}
	}
	return out
}

// goldFromQuotes takes the first symbol, in configured order, with a price.
func (s *Service) goldFromQuotes(ctx context.Context) *float64 {
	r := s.src.GoldQuotes.QuoteBatch(ctx, s.cfg.GoldYahooSymbols, s.cfg.Freshness)
	if !r.OK {
		s.upstreamFailed(s.src.GoldQuotes.Name(), r.ErrorCode, r.Cause)
		return nil
	}
	for _, q := range r.Payload {
		if q.Price != nil {
			return q.Price
		}
	}
	return nil
}

func (s *Service) goldFromBars(ctx context.Context) *float64 {
	r := s.src.GoldBars.Latest(ctx, s.cfg.GoldStooqSymbol, s.cfg.Freshness)
	if !r.OK {
		s.upstreamFailed(SourceStooq, r.ErrorCode, r.Cause)
		return nil
	}
	return r.Payload.Close
}
