package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course is gated video content; playback requires a paid entitlement.
type Course struct {
	ID          string          `gorm:"column:id;primaryKey"`
	Title       string          `gorm:"column:title;not null"`
	Description string          `gorm:"column:description"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	VideoRef    string          `gorm:"column:video_ref;not null"`
	Published   bool            `gorm:"column:published;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
