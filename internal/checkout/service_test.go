package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/omarhegazy/modelbay-backend/internal/catalog"
	"github.com/omarhegazy/modelbay-backend/internal/entitlements"
	"github.com/omarhegazy/modelbay-backend/pkg/db/models"
	"github.com/omarhegazy/modelbay-backend/pkg/enums"
	pkgerrors "github.com/omarhegazy/modelbay-backend/pkg/errors"
	"github.com/omarhegazy/modelbay-backend/pkg/paymob"
)

type stubTxRunner struct {
	err  error
	runs int
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.err != nil {
		return s.err
	}
	s.runs++
	return fn(nil)
}

type stubGateway struct {
	authErr       error
	orderErr      error
	keyErr        error
	authCalls     int
	orderCalls    int
	keyCalls      int
	lastOrder     paymob.OrderParams
	lastKeyParams paymob.PaymentKeyParams
}

func (s *stubGateway) Authenticate(ctx context.Context) (string, error) {
	s.authCalls++
	if s.authErr != nil {
		return "", s.authErr
	}
	return "auth-token", nil
}

func (s *stubGateway) RegisterOrder(ctx context.Context, authToken string, params paymob.OrderParams) (int64, error) {
	s.orderCalls++
	s.lastOrder = params
	if s.orderErr != nil {
		return 0, s.orderErr
	}
	return 5512345, nil
}

func (s *stubGateway) PaymentKey(ctx context.Context, authToken string, params paymob.PaymentKeyParams) (string, error) {
	s.keyCalls++
	s.lastKeyParams = params
	if s.keyErr != nil {
		return "", s.keyErr
	}
	return "payment-token", nil
}

func (s *stubGateway) IntegrationID(channel enums.PaymentChannel) (int64, error) {
	switch channel {
	case enums.PaymentChannelCard:
		return 111, nil
	case enums.PaymentChannelWallet:
		return 222, nil
	}
	return 0, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment channel")
}

func (s *stubGateway) RedirectURL(paymentToken string) string {
	return "https://accept.example.com/api/acceptance/iframes/700123?payment_token=" + paymentToken
}

type stubResolver struct {
	items map[string]*catalog.Item
}

func (s *stubResolver) ResolveItem(ctx context.Context, itemID string) (*catalog.Item, error) {
	if item, ok := s.items[itemID]; ok {
		return item, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown item")
}

type stubSessionRepo struct {
	created []*models.CheckoutSession
	err     error
}

func (s *stubSessionRepo) WithTx(tx *gorm.DB) SessionRepository { return s }

func (s *stubSessionRepo) Create(ctx context.Context, session *models.CheckoutSession) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, session)
	return nil
}

func (s *stubSessionRepo) FindByGatewayOrderID(ctx context.Context, gatewayOrderID int64) (*models.CheckoutSession, error) {
	for _, session := range s.created {
		if session.GatewayOrderID == gatewayOrderID {
			return session, nil
		}
	}
	return nil, nil
}

type stubEntitlementsRepo struct {
	upserted []*models.Entitlement
	err      error
}

func (s *stubEntitlementsRepo) WithTx(tx *gorm.DB) entitlements.Repository { return s }

func (s *stubEntitlementsRepo) UpsertPending(ctx context.Context, ent *models.Entitlement) error {
	if s.err != nil {
		return s.err
	}
	s.upserted = append(s.upserted, ent)
	return nil
}

func (s *stubEntitlementsRepo) MarkPaid(ctx context.Context, buyerID, itemID string, paidAt time.Time) (bool, error) {
	return false, nil
}

func (s *stubEntitlementsRepo) Find(ctx context.Context, buyerID, itemID string) (*models.Entitlement, error) {
	return nil, nil
}

func (s *stubEntitlementsRepo) ListByBuyer(ctx context.Context, buyerID string) ([]models.Entitlement, error) {
	return nil, nil
}

func assetRef(v string) *string { return &v }

func testCatalog() *stubResolver {
	return &stubResolver{items: map[string]*catalog.Item{
		"model-42": {
			ID:        "model-42",
			Name:      "Citadel Scan",
			Kind:      enums.ItemKindModel,
			UnitPrice: decimal.RequireFromString("75.00"),
			AssetRef:  assetRef("assets/model-42.glb"),
		},
		"course-3": {
			ID:        "course-3",
			Name:      "Hard Surface Sculpting",
			Kind:      enums.ItemKindCourse,
			UnitPrice: decimal.RequireFromString("120.50"),
		},
	}}
}

func validInput() CheckoutInput {
	return CheckoutInput{
		BuyerID: "buyer-7",
		Channel: enums.PaymentChannelCard,
		Items: []CheckoutItem{
			{ItemID: "model-42", Name: "Citadel Scan", UnitPrice: decimal.RequireFromString("75.00"), Quantity: 1},
		},
		Billing: paymob.BillingData{Email: "buyer@example.com"},
	}
}

type serviceFixture struct {
	svc      Service
	gateway  *stubGateway
	sessions *stubSessionRepo
	ents     *stubEntitlementsRepo
	tx       *stubTxRunner
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		gateway:  &stubGateway{},
		sessions: &stubSessionRepo{},
		ents:     &stubEntitlementsRepo{},
		tx:       &stubTxRunner{},
	}
	svc, err := NewService(ServiceParams{
		TransactionRunner: f.tx,
		Gateway:           f.gateway,
		Catalog:           testCatalog(),
		Sessions:          f.sessions,
		Entitlements:      f.ents,
		Currency:          enums.CurrencyEGP,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestInitiateReturnsRedirectAndPersistsRecords(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.svc.Initiate(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(5512345), result.GatewayOrderID)
	assert.Equal(t, int64(7500), result.AmountCents)
	assert.Contains(t, result.RedirectURL, "payment_token=payment-token")

	require.Len(t, f.sessions.created, 1)
	session := f.sessions.created[0]
	assert.Equal(t, "buyer-7", session.BuyerID)
	assert.Equal(t, int64(5512345), session.GatewayOrderID)
	assert.Equal(t, "model-42|buyer-7", session.MerchantOrderRef)
	assert.Equal(t, int64(7500), session.AmountCents)
	assert.Equal(t, enums.CurrencyEGP, session.Currency)
	assert.Equal(t, enums.PaymentChannelCard, session.Channel)

	require.Len(t, f.ents.upserted, 1)
	ent := f.ents.upserted[0]
	assert.Equal(t, "buyer-7", ent.BuyerID)
	assert.Equal(t, "model-42", ent.ItemID)
	assert.Equal(t, enums.ItemKindModel, ent.ItemKind)
	assert.Equal(t, enums.EntitlementStatusPending, ent.Status)
	require.NotNil(t, ent.AssetRef)
	assert.Equal(t, "assets/model-42.glb", *ent.AssetRef)
}

func TestInitiateMultiItemCartSharesOneSession(t *testing.T) {
	f := newServiceFixture(t)

	input := validInput()
	input.Items = append(input.Items, CheckoutItem{
		ItemID:    "course-3",
		Name:      "Hard Surface Sculpting",
		UnitPrice: decimal.RequireFromString("120.50"),
		Quantity:  1,
	})

	result, err := f.svc.Initiate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, int64(7500+12050), result.AmountCents)
	require.Len(t, f.sessions.created, 1)
	assert.Equal(t, "model-42+course-3|buyer-7", f.sessions.created[0].MerchantOrderRef)
	assert.Len(t, f.ents.upserted, 2)
	assert.Equal(t, f.gateway.lastOrder.AmountCents, result.AmountCents)
}

func TestInitiateRejectsInvalidInput(t *testing.T) {
	f := newServiceFixture(t)

	cases := []struct {
		name  string
		input CheckoutInput
	}{
		{"missing buyer", func() CheckoutInput { i := validInput(); i.BuyerID = ""; return i }()},
		{"empty cart", func() CheckoutInput { i := validInput(); i.Items = nil; return i }()},
		{"bad channel", func() CheckoutInput { i := validInput(); i.Channel = "cash"; return i }()},
		{"zero quantity", func() CheckoutInput { i := validInput(); i.Items[0].Quantity = 0; return i }()},
		{"zero price", func() CheckoutInput { i := validInput(); i.Items[0].UnitPrice = decimal.Zero; return i }()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Initiate(context.Background(), tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}

	assert.Zero(t, f.gateway.authCalls)
	assert.Empty(t, f.sessions.created)
}

func TestInitiateUnknownItemStopsBeforeGateway(t *testing.T) {
	f := newServiceFixture(t)

	input := validInput()
	input.Items[0].ItemID = "model-999"

	_, err := f.svc.Initiate(context.Background(), input)
	require.Error(t, err)
	assert.Zero(t, f.gateway.authCalls)
	assert.Empty(t, f.sessions.created)
}

func TestInitiateAbortsWhenAuthenticationFails(t *testing.T) {
	f := newServiceFixture(t)
	f.gateway.authErr = pkgerrors.New(pkgerrors.CodeDependency, "gateway down")

	_, err := f.svc.Initiate(context.Background(), validInput())
	require.Error(t, err)

	assert.Zero(t, f.gateway.orderCalls)
	assert.Zero(t, f.gateway.keyCalls)
	assert.Empty(t, f.sessions.created)
	assert.Empty(t, f.ents.upserted)
}

func TestInitiateAbortsWhenOrderRegistrationFails(t *testing.T) {
	f := newServiceFixture(t)
	f.gateway.orderErr = pkgerrors.New(pkgerrors.CodeDependency, "gateway down")

	_, err := f.svc.Initiate(context.Background(), validInput())
	require.Error(t, err)

	assert.Zero(t, f.gateway.keyCalls)
	assert.Empty(t, f.sessions.created)
	assert.Empty(t, f.ents.upserted)
}

func TestInitiateAbortsWhenPaymentKeyFails(t *testing.T) {
	f := newServiceFixture(t)
	f.gateway.keyErr = pkgerrors.New(pkgerrors.CodeDependency, "gateway down")

	_, err := f.svc.Initiate(context.Background(), validInput())
	require.Error(t, err)

	assert.Empty(t, f.sessions.created)
	assert.Empty(t, f.ents.upserted)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestInitiateWrapsPersistenceFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.tx.err = errors.New("connection reset")

	_, err := f.svc.Initiate(context.Background(), validInput())
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}
