package summary

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
)

const riskNote = "Always scale in gradually and set a stop-loss level to keep risk under control."

// Rules writes the fallback summary from the snapshot alone.
func Rules(in Input) string {
	parts := make([]string, 0, 4)
	if in.FX != nil && nonZero(in.FX.USDKRW) {
		parts = append(parts, fmt.Sprintf("USD/KRW is moving around %d won.", int64(math.Round(*in.FX.USDKRW))))
	}
	if in.Gold != nil && nonZero(in.Gold.USDPerOunce) {
		parts = append(parts, fmt.Sprintf("Gold is near $%d per ounce.", int64(math.Round(*in.Gold.USDPerOunce))))
	}
	if best, ok := strongest(in.Indices); ok {
		parts = append(parts, fmt.Sprintf("%s is relatively strong (%.2f%%).", best.label(), *best.RegularMarketChangePercent))
	}
	parts = append(parts, riskNote)
	return strings.Join(parts, " ")
}

// strongest returns the index with the highest percent change. Missing
// percentages rank as zero but are never reported.
func strongest(indices []Index) (Index, bool) {
	if len(indices) == 0 {
		return Index{}, false
	}
	sorted := slices.Clone(indices)
	slices.SortStableFunc(sorted, func(a, b Index) int {
		return cmp.Compare(pct(b), pct(a))
	})
	best := sorted[0]
	if best.RegularMarketChangePercent == nil || best.label() == "" {
		return Index{}, false
	}
	return best, true
}

func (i Index) label() string {
	if i.ShortName != "" {
		return i.ShortName
	}
	return i.Symbol
}

func pct(i Index) float64 {
	if i.RegularMarketChangePercent == nil {
		return 0
	}
	return *i.RegularMarketChangePercent
}

func nonZero(v *float64) bool { return v != nil && *v != 0 }
