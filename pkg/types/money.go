package types

import "github.com/shopspring/decimal"

// MinorUnits converts a major-currency amount into integer minor units
// (e.g. EGP -> piastres) using round-half-up. The gateway only accepts
// integer cents, so this is the single conversion point for all totals.
func MinorUnits(amount decimal.Decimal, exponent int32) int64 {
	return amount.Shift(exponent).Round(0).IntPart()
}

// CartTotalMinorUnits sums unitPrice*qty per line and converts once at the
// end, so per-line rounding never drifts the order total.
func CartTotalMinorUnits(lines []CartLine, exponent int32) int64 {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return MinorUnits(total, exponent)
}

// CartLine is the priceable slice of a cart item.
type CartLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}
