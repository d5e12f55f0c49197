package market

import (
	"encoding/json"
	"math"
)

// Finite converts a decoded JSON value into a finite float.
// Missing, null, non-numeric and non-finite inputs all map to nil.
func Finite(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return FiniteFloat(f)
}

// FiniteFloat returns a pointer to f, or nil when f is NaN or infinite.
func FiniteFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Float is shorthand for a present value.
func Float(f float64) *float64 { return &f }
