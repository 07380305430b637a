package enums

// Currency is the ISO-4217 code an order is charged in.
type Currency string

const (
	CurrencyEGP Currency = "EGP"
	CurrencyUSD Currency = "USD"
)

// MinorUnitExponent returns the power of ten between the major unit and the
// minor unit the gateway bills in.
func (c Currency) MinorUnitExponent() int32 {
	// Both supported currencies use two decimal places.
	return 2
}
