package aggregate

import (
	"context"

	"marketdash/internal/market"
	"marketdash/internal/resolve"
)

// ExchangeRates builds the FX board. Only a failed latest fetch fails the
// call; a missing prior observation leaves the change fields null.
// PreviousDate is the date the provider reports for the prior observation,
// or the probed day when it reports none.
func (s *Service) ExchangeRates(ctx context.Context) market.Result[FXBoard] {
	if s.src.FX == nil {
		s.log.Warn("exchange rates requested without a source")
		return record(s, "fx", market.Failure[FXBoard](market.CodeFXLatestFailed, ErrNoFXSource))
	}
	codes := s.pairCodes()
	latest := s.src.FX.Latest(ctx, s.cfg.Base, codes, s.cfg.Freshness)
	if !latest.OK {
		s.upstreamFailed("frankfurter", latest.ErrorCode, latest.Cause)
		return record(s, "fx", market.Failure[FXBoard](market.CodeFXLatestFailed, latest.Cause))
	}
	obs := latest.Payload

	prevDate, prev, found := resolve.Backfill(ctx, obs.AsOfDate, s.cfg.Lookback,
		func(ctx context.Context, d market.Date) (market.RateObservation, bool) {
			r := s.src.FX.OnDate(ctx, d, s.cfg.Base, codes, s.cfg.Freshness)
			if !r.OK {
				s.log.Debug("prior observation probe failed", "date", d.String(), "code", string(r.ErrorCode), "error", r.Cause)
				return market.RateObservation{}, false
			}
			return r.Payload, r.Payload.HasAny(codes)
		})

	board := FXBoard{AsOfDate: obs.AsOfDate, Rows: make([]FXRow, 0, len(s.cfg.Pairs))}
	if found {
		board.PreviousDate = &prevDate
		// A non-business day answers with the last business day it holds.
		if d := prev.AsOfDate; !d.IsZero() && d.Before(obs.AsOfDate) {
			board.PreviousDate = &d
		}
	} else {
		s.log.Info("no prior fx observation", "latest", obs.AsOfDate.String(), "lookback", s.cfg.Lookback)
	}
	for _, p := range s.cfg.Pairs {
		cur := obs.Rate(p.Code)
		var before *float64
		if found {
			before = prev.Rate(p.Code)
		}
		board.Rows = append(board.Rows, FXRow{
			Pair:   p.Code,
			Name:   p.Name,
			Value:  cur,
			Change: market.ComputeChange(cur, before),
		})
	}
	return record(s, "fx", market.Success(board))
}
