// Package finance holds the pure interest, amortization and valuation maths.
// Every function is total over its inputs: missing or non-positive values
// short-circuit to zero results instead of returning errors.
package finance

import "github.com/shopspring/decimal"

// Round2 rounds x to 2 decimal places, half away from zero.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// sub2 returns a - b with both operands rounded to cents, so the parts of a
// split always add back to the rounded whole.
func sub2(a, b float64) float64 {
	return decimal.NewFromFloat(a).Round(2).Sub(decimal.NewFromFloat(b).Round(2)).InexactFloat64()
}
