package enums

// PaymentChannel selects which gateway integration a checkout runs through.
type PaymentChannel string

const (
	PaymentChannelCard   PaymentChannel = "card"
	PaymentChannelWallet PaymentChannel = "mobile_wallet"
)

// Valid reports whether the channel is one of the supported integrations.
func (c PaymentChannel) Valid() bool {
	switch c {
	case PaymentChannelCard, PaymentChannelWallet:
		return true
	}
	return false
}
