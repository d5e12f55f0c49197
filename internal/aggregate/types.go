package aggregate

import "marketdash/internal/market"

// Pair is a currency quoted against the board's base, e.g. {KRW, "USD/KRW"}.
type Pair struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// FXRow is one currency pair on the board.
type FXRow struct {
	Pair   string              `json:"pair"`
	Name   string              `json:"name"`
	Value  *float64            `json:"value"`
	Change market.ChangeRecord `json:"change"`
}

// FXBoard is the latest observation diffed against the prior one.
// PreviousDate is nil when no prior observation was found.
type FXBoard struct {
	AsOfDate     market.Date  `json:"asOfDate"`
	PreviousDate *market.Date `json:"previousDate"`
	Rows         []FXRow      `json:"rows"`
}

// GoldPrice is spot gold per troy ounce. Both values are zero when no source
// had a price; KRWPerOunce alone is zero when the conversion rate was unavailable.
type GoldPrice struct {
	USDPerOunce float64     `json:"usdPerOunce"`
	KRWPerOunce float64     `json:"krwPerOunce"`
	AsOfDate    market.Date `json:"asOfDate"`
	Source      string      `json:"source,omitempty"`
}

// Dashboard bundles the three boards. Each keeps its own envelope.
type Dashboard struct {
	FX      market.Result[FXBoard]        `json:"fx"`
	Gold    market.Result[GoldPrice]      `json:"gold"`
	Indices market.Result[[]market.Quote] `json:"indices"`
}
