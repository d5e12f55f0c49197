package market

import "slices"

// Quote is one instrument's normalized price from a single provider.
type Quote struct {
	Symbol        string   `json:"symbol"`
	DisplayName   string   `json:"displayName"`
	Price         *float64 `json:"price"`
	Change        *float64 `json:"change"`
	ChangePercent *float64 `json:"changePercent"`
}

// RateObservation holds one provider-dated set of currency rates against Base.
// Rates only ever contains finite values.
type RateObservation struct {
	AsOfDate Date               `json:"asOfDate"`
	Base     string             `json:"base"`
	Rates    map[string]float64 `json:"rates"`
}

// Rate returns the rate for code, or nil when the provider had none.
func (o RateObservation) Rate(code string) *float64 {
	v, ok := o.Rates[code]
	if !ok {
		return nil
	}
	return FiniteFloat(v)
}

// HasAny reports whether at least one of codes has a usable rate.
func (o RateObservation) HasAny(codes []string) bool {
	return slices.ContainsFunc(codes, func(c string) bool { return o.Rate(c) != nil })
}

// Bar is one row of a daily OHLCV feed. Unparseable cells are nil.
type Bar struct {
	Symbol string   `json:"symbol"`
	Date   string   `json:"date"`
	Time   string   `json:"time"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *float64 `json:"volume"`
}
