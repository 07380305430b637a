package entitlements

import (
	"context"
	"errors"
	"time"

	"github.com/omarhegazy/modelbay-backend/pkg/db/models"
	"github.com/omarhegazy/modelbay-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists entitlements keyed by (buyer_id, item_id).
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	UpsertPending(ctx context.Context, ent *models.Entitlement) error
	MarkPaid(ctx context.Context, buyerID, itemID string, paidAt time.Time) (bool, error)
	Find(ctx context.Context, buyerID, itemID string) (*models.Entitlement, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]models.Entitlement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an entitlements repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// UpsertPending creates the entitlement stub or refreshes its metadata.
// The status column is deliberately left out of the update set: a repurchase
// must never downgrade an already-paid entitlement back to pending.
func (r *repository) UpsertPending(ctx context.Context, ent *models.Entitlement) error {
	if ent.Status == "" {
		ent.Status = enums.EntitlementStatusPending
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "buyer_id"}, {Name: "item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"item_name", "asset_ref", "updated_at"}),
		}).
		Create(ent).Error
}

// MarkPaid flips pending -> paid with a conditional update so duplicate
// webhook deliveries are no-ops. Returns whether a row transitioned.
func (r *repository) MarkPaid(ctx context.Context, buyerID, itemID string, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Entitlement{}).
		Where("buyer_id = ? AND item_id = ? AND status <> ?", buyerID, itemID, enums.EntitlementStatusPaid).
		Updates(map[string]any{
			"status":       enums.EntitlementStatusPaid,
			"purchased_at": paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Find returns the entitlement for the pair, or nil when none exists.
func (r *repository) Find(ctx context.Context, buyerID, itemID string) (*models.Entitlement, error) {
	var ent models.Entitlement
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND item_id = ?", buyerID, itemID).
		First(&ent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ent, nil
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID string) ([]models.Entitlement, error) {
	var ents []models.Entitlement
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&ents).Error
	if err != nil {
		return nil, err
	}
	return ents, nil
}
