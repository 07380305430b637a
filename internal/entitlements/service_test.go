package entitlements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/omarhegazy/modelbay-backend/pkg/db/models"
	"github.com/omarhegazy/modelbay-backend/pkg/enums"
	pkgerrors "github.com/omarhegazy/modelbay-backend/pkg/errors"
)

type stubRepo struct {
	ents map[string]*models.Entitlement
	err  error
}

func key(buyerID, itemID string) string { return buyerID + "/" + itemID }

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) UpsertPending(ctx context.Context, ent *models.Entitlement) error { return nil }

func (s *stubRepo) MarkPaid(ctx context.Context, buyerID, itemID string, paidAt time.Time) (bool, error) {
	return false, nil
}

func (s *stubRepo) Find(ctx context.Context, buyerID, itemID string) (*models.Entitlement, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ents[key(buyerID, itemID)], nil
}

func (s *stubRepo) ListByBuyer(ctx context.Context, buyerID string) ([]models.Entitlement, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Entitlement
	for _, ent := range s.ents {
		if ent.BuyerID == buyerID {
			out = append(out, *ent)
		}
	}
	return out, nil
}

func ref(v string) *string { return &v }

func paidModel(buyerID, itemID string) *models.Entitlement {
	now := time.Now().UTC()
	return &models.Entitlement{
		BuyerID:     buyerID,
		ItemID:      itemID,
		ItemKind:    enums.ItemKindModel,
		ItemName:    "Citadel Scan",
		AssetRef:    ref("assets/model-42.glb"),
		Status:      enums.EntitlementStatusPaid,
		PurchasedAt: &now,
	}
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func TestAllowedPaidEntitlementGrantsAccess(t *testing.T) {
	svc := newTestService(t, &stubRepo{ents: map[string]*models.Entitlement{
		key("buyer-7", "model-42"): paidModel("buyer-7", "model-42"),
	}})

	allowed, err := svc.Allowed(context.Background(), "buyer-7", "model-42")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAllowedPendingEntitlementDeniesAccess(t *testing.T) {
	pending := paidModel("buyer-7", "model-42")
	pending.Status = enums.EntitlementStatusPending
	pending.PurchasedAt = nil

	svc := newTestService(t, &stubRepo{ents: map[string]*models.Entitlement{
		key("buyer-7", "model-42"): pending,
	}})

	allowed, err := svc.Allowed(context.Background(), "buyer-7", "model-42")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAllowedMissingEntitlementDeniesWithoutError(t *testing.T) {
	svc := newTestService(t, &stubRepo{ents: map[string]*models.Entitlement{}})

	allowed, err := svc.Allowed(context.Background(), "buyer-7", "model-42")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAllowedLookupFailureIsNotAGrant(t *testing.T) {
	svc := newTestService(t, &stubRepo{err: errors.New("connection reset")})

	allowed, err := svc.Allowed(context.Background(), "buyer-7", "model-42")
	require.Error(t, err)
	assert.False(t, allowed)
}

func TestAllowedRequiresIdentifiers(t *testing.T) {
	svc := newTestService(t, &stubRepo{})

	_, err := svc.Allowed(context.Background(), "", "model-42")
	require.Error(t, err)

	_, err = svc.Allowed(context.Background(), "buyer-7", "")
	require.Error(t, err)
}

func TestAssetRefReturnsReferenceForPaidModel(t *testing.T) {
	svc := newTestService(t, &stubRepo{ents: map[string]*models.Entitlement{
		key("buyer-7", "model-42"): paidModel("buyer-7", "model-42"),
	}})

	assetRef, err := svc.AssetRef(context.Background(), "buyer-7", "model-42")
	require.NoError(t, err)
	assert.Equal(t, "assets/model-42.glb", assetRef)
}

func TestAssetRefPendingPurchaseIsForbidden(t *testing.T) {
	pending := paidModel("buyer-7", "model-42")
	pending.Status = enums.EntitlementStatusPending

	svc := newTestService(t, &stubRepo{ents: map[string]*models.Entitlement{
		key("buyer-7", "model-42"): pending,
	}})

	_, err := svc.AssetRef(context.Background(), "buyer-7", "model-42")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestAssetRefCourseHasNoDownload(t *testing.T) {
	course := paidModel("buyer-7", "course-3")
	course.ItemID = "course-3"
	course.ItemKind = enums.ItemKindCourse
	course.AssetRef = nil

	svc := newTestService(t, &stubRepo{ents: map[string]*models.Entitlement{
		key("buyer-7", "course-3"): course,
	}})

	_, err := svc.AssetRef(context.Background(), "buyer-7", "course-3")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListPurchasesMapsEntitlements(t *testing.T) {
	svc := newTestService(t, &stubRepo{ents: map[string]*models.Entitlement{
		key("buyer-7", "model-42"): paidModel("buyer-7", "model-42"),
	}})

	purchases, err := svc.ListPurchases(context.Background(), "buyer-7")
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, "model-42", purchases[0].ItemID)
	assert.True(t, purchases[0].Paid)
	assert.NotNil(t, purchases[0].PurchasedAt)
}
