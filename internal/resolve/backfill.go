package resolve

import (
	"context"

	"marketdash/internal/market"
)

// DefaultLookback covers a long weekend plus holidays.
const DefaultLookback = 7

// Backfill walks back from latest-1 one UTC day at a time, up to maxLookback
// days, and returns the first date whose probe reports data along with the
// probed value. When nothing is found, or ctx is done, it returns latest, the
// zero T and false.
func Backfill[T any](ctx context.Context, latest market.Date, maxLookback int, probe func(context.Context, market.Date) (T, bool)) (market.Date, T, bool) {
	var zero T
	if latest.IsZero() {
		return latest, zero, false
	}
	for i := 1; i <= maxLookback; i++ {
		if ctx.Err() != nil {
			break
		}
		d := latest.AddDays(-i)
		if v, ok := probe(ctx, d); ok {
			return d, v, true
		}
	}
	return latest, zero, false
}

// PriorObservationDate is Backfill for callers that only need the date.
func PriorObservationDate(ctx context.Context, latest market.Date, maxLookback int, has func(context.Context, market.Date) bool) market.Date {
	d, _, _ := Backfill(ctx, latest, maxLookback, func(ctx context.Context, d market.Date) (struct{}, bool) {
		return struct{}{}, has(ctx, d)
	})
	return d
}
