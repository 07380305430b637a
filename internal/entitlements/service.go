package entitlements

import (
	"context"
	"fmt"
	"time"

	"github.com/omarhegazy/modelbay-backend/pkg/db/models"
	"github.com/omarhegazy/modelbay-backend/pkg/enums"
	pkgerrors "github.com/omarhegazy/modelbay-backend/pkg/errors"
)

// Service answers the access and download questions the storefront asks.
// A grant requires an entitlement the webhook reconciler has marked paid;
// there is no item class that gets access on record existence alone.
type Service interface {
	Allowed(ctx context.Context, buyerID, itemID string) (bool, error)
	AssetRef(ctx context.Context, buyerID, itemID string) (string, error)
	ListPurchases(ctx context.Context, buyerID string) ([]PurchaseDTO, error)
}

// PurchaseDTO is the buyer-facing view of one entitlement.
type PurchaseDTO struct {
	ItemID      string     `json:"item_id"`
	ItemKind    string     `json:"item_kind"`
	ItemName    string     `json:"item_name"`
	Paid        bool       `json:"paid"`
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`
}

type service struct {
	repo Repository
}

// NewService builds the entitlements service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("entitlements repository required")
	}
	return &service{repo: repo}, nil
}

// Allowed reports whether the buyer may access the item. A missing record is
// an explicit deny, never an error that a caller could mistake for a grant.
func (s *service) Allowed(ctx context.Context, buyerID, itemID string) (bool, error) {
	if buyerID == "" || itemID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "buyer id and item id required")
	}
	ent, err := s.repo.Find(ctx, buyerID, itemID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load entitlement")
	}
	if ent == nil {
		return false, nil
	}
	return ent.Paid(), nil
}

// AssetRef returns the downloadable asset reference for a paid model
// entitlement.
func (s *service) AssetRef(ctx context.Context, buyerID, itemID string) (string, error) {
	if buyerID == "" || itemID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "buyer id and item id required")
	}
	ent, err := s.repo.Find(ctx, buyerID, itemID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load entitlement")
	}
	if ent == nil || !ent.Paid() {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "purchase required")
	}
	if ent.ItemKind != enums.ItemKindModel || ent.AssetRef == nil || *ent.AssetRef == "" {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "no downloadable asset for item")
	}
	return *ent.AssetRef, nil
}

func (s *service) ListPurchases(ctx context.Context, buyerID string) ([]PurchaseDTO, error) {
	if buyerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	ents, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list entitlements")
	}
	out := make([]PurchaseDTO, 0, len(ents))
	for _, ent := range ents {
		out = append(out, newPurchaseDTO(ent))
	}
	return out, nil
}

func newPurchaseDTO(ent models.Entitlement) PurchaseDTO {
	return PurchaseDTO{
		ItemID:      ent.ItemID,
		ItemKind:    string(ent.ItemKind),
		ItemName:    ent.ItemName,
		Paid:        ent.Paid(),
		PurchasedAt: ent.PurchasedAt,
	}
}
