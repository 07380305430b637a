package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a purchasable 3-D model. AssetRef points at the downloadable
// file served to paid buyers.
type Product struct {
	ID          string          `gorm:"column:id;primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	AssetRef    string          `gorm:"column:asset_ref;not null"`
	PreviewURL  string          `gorm:"column:preview_url"`
	Published   bool            `gorm:"column:published;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
