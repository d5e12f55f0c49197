package market

// ChangeRecord is a day-over-day comparison of one numeric observation.
// AbsoluteChange and PercentChange are nil whenever either operand is nil;
// PercentChange is also nil when Previous is exactly zero.
type ChangeRecord struct {
	Current        *float64 `json:"current"`
	Previous       *float64 `json:"previous"`
	AbsoluteChange *float64 `json:"absoluteChange"`
	PercentChange  *float64 `json:"percentChange"`
}

// ComputeChange is total and deterministic for every operand combination.
func ComputeChange(current, previous *float64) ChangeRecord {
	rec := ChangeRecord{Current: copyFloat(current), Previous: copyFloat(previous)}
	if current == nil || previous == nil {
		return rec
	}
	abs := *current - *previous
	rec.AbsoluteChange = FiniteFloat(abs)
	if *previous != 0 && rec.AbsoluteChange != nil {
		rec.PercentChange = FiniteFloat(abs / *previous * 100)
	}
	return rec
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return FiniteFloat(*p)
}
