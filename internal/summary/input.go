package summary

import (
	"marketdash/internal/aggregate"
	"marketdash/internal/market"
)

// Input is the market snapshot a summary is written from. Every field is optional.
type Input struct {
	FX      *FX     `json:"fx,omitempty"`
	Gold    *Gold   `json:"gold,omitempty"`
	Indices []Index `json:"indices,omitempty"`
}

type FX struct {
	USDKRW *float64 `json:"usdkrw,omitempty"`
	USDJPY *float64 `json:"usdjpy,omitempty"`
	USDEUR *float64 `json:"usdeur,omitempty"`
}

type Gold struct {
	USDPerOunce *float64 `json:"usdPerOunce,omitempty"`
	KRWPerOunce *float64 `json:"krwPerOunce,omitempty"`
}

type Index struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName,omitempty"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice,omitempty"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent,omitempty"`
}

// FromDashboard keeps only the successful parts of d.
func FromDashboard(d aggregate.Dashboard) Input {
	var in Input
	if d.FX.OK {
		fx := &FX{}
		for _, row := range d.FX.Payload.Rows {
			switch row.Pair {
			case "KRW":
				fx.USDKRW = row.Value
			case "JPY":
				fx.USDJPY = row.Value
			case "EUR":
				fx.USDEUR = row.Value
			}
		}
		in.FX = fx
	}
	if d.Gold.OK && d.Gold.Payload.USDPerOunce != 0 {
		in.Gold = &Gold{
			USDPerOunce: market.Float(d.Gold.Payload.USDPerOunce),
			KRWPerOunce: market.Float(d.Gold.Payload.KRWPerOunce),
		}
	}
	if d.Indices.OK {
		for _, q := range d.Indices.Payload {
			in.Indices = append(in.Indices, Index{
				Symbol:                     q.Symbol,
				ShortName:                  q.DisplayName,
				RegularMarketPrice:         q.Price,
				RegularMarketChangePercent: q.ChangePercent,
			})
		}
	}
	return in
}
