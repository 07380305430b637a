package paymob

// BillingData is the payer profile Paymob requires when requesting a payment
// key. Fields the storefront does not collect are sent as "NA", which the
// gateway accepts.
type BillingData struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Apartment   string `json:"apartment"`
	Floor       string `json:"floor"`
	Street      string `json:"street"`
	Building    string `json:"building"`
	City        string `json:"city"`
	Country     string `json:"country"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
}

// NormalizeBillingData fills the address placeholders Paymob insists on.
func NormalizeBillingData(b BillingData) BillingData {
	fill := func(v string) string {
		if v == "" {
			return "NA"
		}
		return v
	}
	b.Apartment = fill(b.Apartment)
	b.Floor = fill(b.Floor)
	b.Street = fill(b.Street)
	b.Building = fill(b.Building)
	b.City = fill(b.City)
	b.Country = fill(b.Country)
	b.State = fill(b.State)
	b.PostalCode = fill(b.PostalCode)
	return b
}

// OrderItem mirrors Paymob's order line shape.
type OrderItem struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
	Quantity    int    `json:"quantity"`
}

// OrderParams registers a server-computed total against an auth token.
type OrderParams struct {
	AmountCents     int64
	Currency        string
	MerchantOrderID string
	Items           []OrderItem
}

// PaymentKeyParams binds the registered order to a payable token.
type PaymentKeyParams struct {
	OrderID       int64
	AmountCents   int64
	Currency      string
	IntegrationID int64
	Billing       BillingData
}

type authRequest struct {
	APIKey string `json:"api_key"`
}

type authResponse struct {
	Token string `json:"token"`
}

type orderRequest struct {
	AuthToken       string      `json:"auth_token"`
	DeliveryNeeded  bool        `json:"delivery_needed"`
	AmountCents     int64       `json:"amount_cents"`
	Currency        string      `json:"currency"`
	MerchantOrderID string      `json:"merchant_order_id"`
	Items           []OrderItem `json:"items"`
}

type orderResponse struct {
	ID int64 `json:"id"`
}

type paymentKeyRequest struct {
	AuthToken         string      `json:"auth_token"`
	AmountCents       string      `json:"amount_cents"`
	ExpirationSeconds int64       `json:"expiration"`
	OrderID           int64       `json:"order_id"`
	BillingData       BillingData `json:"billing_data"`
	Currency          string      `json:"currency"`
	IntegrationID     int64       `json:"integration_id"`
	NotificationURL   string      `json:"notification_url,omitempty"`
}

type paymentKeyResponse struct {
	Token string `json:"token"`
}
