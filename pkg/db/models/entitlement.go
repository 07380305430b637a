package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/omarhegazy/modelbay-backend/pkg/enums"
)

// Entitlement is the durable artifact of a purchase, keyed by buyer + item.
// Checkout creates it pending; only the webhook reconciler marks it paid.
type Entitlement struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID     string                  `gorm:"column:buyer_id;not null;uniqueIndex:idx_entitlements_buyer_item,priority:1"`
	ItemID      string                  `gorm:"column:item_id;not null;uniqueIndex:idx_entitlements_buyer_item,priority:2"`
	ItemKind    enums.ItemKind          `gorm:"column:item_kind;not null"`
	ItemName    string                  `gorm:"column:item_name;not null"`
	AssetRef    *string                 `gorm:"column:asset_ref"`
	Status      enums.EntitlementStatus `gorm:"column:status;not null;default:'pending'"`
	PurchasedAt *time.Time              `gorm:"column:purchased_at"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// Paid reports whether the purchase was confirmed by the gateway.
func (e Entitlement) Paid() bool {
	return e.Status == enums.EntitlementStatusPaid
}
