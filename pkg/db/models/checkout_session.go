package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/omarhegazy/modelbay-backend/pkg/enums"
)

// CheckoutSession records one checkout attempt against the gateway.
// Rows are write-once: created after the payment key is obtained, never
// mutated afterwards. They exist to reconcile webhook callbacks against
// what was actually submitted.
type CheckoutSession struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID          string               `gorm:"column:buyer_id;not null;index"`
	GatewayOrderID   int64                `gorm:"column:gateway_order_id;not null;uniqueIndex"`
	MerchantOrderRef string               `gorm:"column:merchant_order_ref;not null"`
	AmountCents      int64                `gorm:"column:amount_cents;not null"`
	Currency         enums.Currency       `gorm:"column:currency;not null"`
	Channel          enums.PaymentChannel `gorm:"column:channel;not null"`
	RedirectTarget   string               `gorm:"column:redirect_target;not null"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
}
