package market_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketdash/internal/market"
)

func TestDate_AddDays_CrossesMonthAndYear(t *testing.T) {
	t.Parallel()

	d := market.MustDate("2025-01-01")
	require.Equal(t, "2024-12-31", d.AddDays(-1).String())
	require.Equal(t, "2024-12-25", d.AddDays(-7).String())
	require.Equal(t, "2024-03-01", market.MustDate("2024-02-29").AddDays(1).String())
}

func TestDateOf_UsesUTCDay(t *testing.T) {
	t.Parallel()

	seoul := time.FixedZone("KST", 9*3600)
	// 2025-03-04 02:00 KST is still 2025-03-03 in UTC.
	got := market.DateOf(time.Date(2025, 3, 4, 2, 0, 0, 0, seoul))
	require.Equal(t, "2025-03-03", got.String())
}

func TestDate_JSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(struct {
		D market.Date  `json:"d"`
		P *market.Date `json:"p"`
	}{D: market.MustDate("2025-06-30")})
	require.NoError(t, err)
	require.JSONEq(t, `{"d":"2025-06-30","p":null}`, string(b))

	var d market.Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-06-30"`), &d))
	require.Equal(t, "2025-06-30", d.String())
	require.Error(t, json.Unmarshal([]byte(`"30/06/2025"`), &d))
}

func TestFinite(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1.5, *market.Finite(1.5))
	require.Equal(t, 42.0, *market.Finite(json.Number("42")))
	require.Nil(t, market.Finite(nil))
	require.Nil(t, market.Finite("1.5"))
	require.Nil(t, market.Finite(true))
	require.Nil(t, market.Finite(json.Number("abc")))
	require.Nil(t, market.Finite(math.NaN()))
	require.Nil(t, market.Finite(math.Inf(1)))
}

func TestRateObservation_HasAny(t *testing.T) {
	t.Parallel()

	o := market.RateObservation{Rates: map[string]float64{"JPY": 150.2}}
	require.True(t, o.HasAny([]string{"KRW", "JPY"}))
	require.False(t, o.HasAny([]string{"KRW", "EUR"}))
	require.Nil(t, o.Rate("KRW"))
}
