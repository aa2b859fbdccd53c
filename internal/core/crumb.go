package core

import "github.com/shopspring/decimal"

// RemoveCrumb snaps v to the nearest integer when it lies within tolerance of
// it, and returns v unchanged otherwise. Rounding is half-to-even.
func RemoveCrumb(v, tolerance decimal.Decimal) decimal.Decimal {
	rounded := v.RoundBank(0)
	if rounded.Sub(v).Abs().LessThanOrEqual(tolerance) {
		return rounded
	}
	return v
}
