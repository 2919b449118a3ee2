package finance

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Percentage returns part/whole*100 rounded half-to-even and clamped to
// [0, 100]. A non-positive whole yields 0.
func Percentage(part, whole decimal.Decimal) int {
	if !whole.IsPositive() {
		return 0
	}
	p := part.Div(whole).Mul(hundred).RoundBank(0)
	if p.IsNegative() {
		return 0
	}
	if p.GreaterThan(hundred) {
		return 100
	}
	return int(p.IntPart())
}

// Remaining returns max(0, whole-part).
func Remaining(whole, part decimal.Decimal) decimal.Decimal {
	r := whole.Sub(part)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Sum adds all amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
