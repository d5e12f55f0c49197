package market_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"marketdash/internal/market"
)

func TestResult_JSON_SuccessOmitsErrorCode(t *testing.T) {
	t.Parallel()

	r := market.Success([]market.Quote{{Symbol: "SPY", DisplayName: "SPY", Price: market.Float(500.25)}})
	b, err := json.Marshal(r)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true,"payload":[{"symbol":"SPY","displayName":"SPY","price":500.25,"change":null,"changePercent":null}]}`, string(b))
}

func TestResult_JSON_FailureOmitsPayload(t *testing.T) {
	t.Parallel()

	r := market.Failure[market.RateObservation](market.CodeFXLatestFailed, errors.New("boom"))
	b, err := json.Marshal(r)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":false,"errorCode":"fx_latest_failed"}`, string(b))
	require.ErrorContains(t, r.Err(), "fx_latest_failed")
	require.ErrorContains(t, r.Err(), "boom")
}

func TestResult_JSON_EmptyListStaysArray(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(market.Success([]market.Quote{}))
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true,"payload":[]}`, string(b))
}

func TestResult_UnmarshalRoundTrip(t *testing.T) {
	t.Parallel()

	in := market.Success(market.RateObservation{
		AsOfDate: market.MustDate("2025-01-03"),
		Base:     "USD",
		Rates:    map[string]float64{"KRW": 1470.5},
	})
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out market.Result[market.RateObservation]
	require.NoError(t, json.Unmarshal(b, &out))
	require.True(t, out.OK)
	require.True(t, out.Payload.AsOfDate.Equal(in.Payload.AsOfDate))
	require.Equal(t, 1470.5, *out.Payload.Rate("KRW"))
	require.NoError(t, out.Err())
}
