// Package resolve picks values across sources and across days.
package resolve

import (
	"context"

	"marketdash/internal/market"
)

// Candidate is one source in a fallback chain. Fetch returns nil when the
// source has no usable value.
type Candidate struct {
	Name  string
	Fetch func(ctx context.Context) *float64
}

// Resolved is the outcome of FirstFinite. Source is empty when Value is nil.
type Resolved struct {
	Value  *float64
	Source string
}

// FirstFinite tries candidates in order and stops at the first finite value.
// Each candidate runs at most once; later candidates are never invoked after a hit.
func FirstFinite(ctx context.Context, candidates ...Candidate) Resolved {
	for _, c := range candidates {
		if c.Fetch == nil {
			continue
		}
		v := c.Fetch(ctx)
		if v == nil {
			continue
		}
		if f := market.FiniteFloat(*v); f != nil {
			return Resolved{Value: f, Source: c.Name}
		}
	}
	return Resolved{}
}
