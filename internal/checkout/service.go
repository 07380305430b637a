package checkout

import (
	"context"
	"fmt"

	"github.com/omarhegazy/modelbay-backend/internal/catalog"
	"github.com/omarhegazy/modelbay-backend/internal/entitlements"
	"github.com/omarhegazy/modelbay-backend/pkg/db/models"
	"github.com/omarhegazy/modelbay-backend/pkg/enums"
	pkgerrors "github.com/omarhegazy/modelbay-backend/pkg/errors"
	"github.com/omarhegazy/modelbay-backend/pkg/metrics"
	"github.com/omarhegazy/modelbay-backend/pkg/paymob"
	"github.com/omarhegazy/modelbay-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type itemResolver interface {
	ResolveItem(ctx context.Context, itemID string) (*catalog.Item, error)
}

type gatewayClient interface {
	Authenticate(ctx context.Context) (string, error)
	RegisterOrder(ctx context.Context, authToken string, params paymob.OrderParams) (int64, error)
	PaymentKey(ctx context.Context, authToken string, params paymob.PaymentKeyParams) (string, error)
	IntegrationID(channel enums.PaymentChannel) (int64, error)
	RedirectURL(paymentToken string) string
}

// Service turns a cart snapshot into a hosted-payment redirect.
type Service interface {
	Initiate(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}

// CheckoutItem is one cart line as submitted by the client.
type CheckoutItem struct {
	ItemID    string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// CheckoutInput captures everything one checkout attempt needs.
type CheckoutInput struct {
	Items   []CheckoutItem
	BuyerID string
	Billing paymob.BillingData
	Channel enums.PaymentChannel
}

// CheckoutResult is returned once the full gateway chain has succeeded.
type CheckoutResult struct {
	SessionID      uuid.UUID
	GatewayOrderID int64
	AmountCents    int64
	RedirectURL    string
}

type service struct {
	tx       txRunner
	gateway  gatewayClient
	catalog  itemResolver
	sessions SessionRepository
	ents     entitlements.Repository
	currency enums.Currency
	metrics  *metrics.PaymentMetrics
}

// ServiceParams carries the checkout service dependencies.
type ServiceParams struct {
	TransactionRunner txRunner
	Gateway           gatewayClient
	Catalog           itemResolver
	Sessions          SessionRepository
	Entitlements      entitlements.Repository
	Currency          enums.Currency
	Metrics           *metrics.PaymentMetrics
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog resolver required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session repository required")
	}
	if params.Entitlements == nil {
		return nil, fmt.Errorf("entitlements repository required")
	}
	currency := params.Currency
	if currency == "" {
		currency = enums.CurrencyEGP
	}
	return &service{
		tx:       params.TransactionRunner,
		gateway:  params.Gateway,
		catalog:  params.Catalog,
		sessions: params.Sessions,
		ents:     params.Entitlements,
		currency: currency,
		metrics:  params.Metrics,
	}, nil
}

// Initiate validates the cart, runs the gateway chain (auth token -> order
// registration -> integration resolution -> payment key) strictly in order,
// and only then persists the session plus one pending entitlement per item.
// Any link failing aborts the whole attempt before anything is written, so a
// failed chain never leaves stub records behind.
func (s *service) Initiate(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	result, err := s.initiate(ctx, input)
	if err != nil {
		s.metrics.ObserveCheckout(string(input.Channel), "failure")
		return nil, err
	}
	s.metrics.ObserveCheckout(string(input.Channel), "success")
	return result, nil
}

func (s *service) initiate(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	integrationID, err := s.gateway.IntegrationID(input.Channel)
	if err != nil {
		return nil, err
	}

	resolved := make([]*catalog.Item, len(input.Items))
	for i, item := range input.Items {
		entry, err := s.catalog.ResolveItem(ctx, item.ItemID)
		if err != nil {
			return nil, err
		}
		resolved[i] = entry
	}

	// The order total is always recomputed here; a client-sent total is
	// never read off the wire.
	amountCents := cartTotalCents(input.Items, s.currency)
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}

	itemIDs := make([]string, len(input.Items))
	orderItems := make([]paymob.OrderItem, len(input.Items))
	for i, item := range input.Items {
		itemIDs[i] = item.ItemID
		orderItems[i] = paymob.OrderItem{
			Name:        item.Name,
			AmountCents: types.MinorUnits(item.UnitPrice, s.currency.MinorUnitExponent()),
			Quantity:    item.Quantity,
		}
	}
	merchantRef := MerchantOrderRef(itemIDs, input.BuyerID)

	authToken, err := s.gateway.Authenticate(ctx)
	if err != nil {
		return nil, paymentSetupFailed(err, "authenticate")
	}

	gatewayOrderID, err := s.gateway.RegisterOrder(ctx, authToken, paymob.OrderParams{
		AmountCents:     amountCents,
		Currency:        string(s.currency),
		MerchantOrderID: merchantRef,
		Items:           orderItems,
	})
	if err != nil {
		return nil, paymentSetupFailed(err, "register order")
	}

	paymentToken, err := s.gateway.PaymentKey(ctx, authToken, paymob.PaymentKeyParams{
		OrderID:       gatewayOrderID,
		AmountCents:   amountCents,
		Currency:      string(s.currency),
		IntegrationID: integrationID,
		Billing:       input.Billing,
	})
	if err != nil {
		return nil, paymentSetupFailed(err, "payment key")
	}

	redirectURL := s.gateway.RedirectURL(paymentToken)

	session := &models.CheckoutSession{
		BuyerID:          input.BuyerID,
		GatewayOrderID:   gatewayOrderID,
		MerchantOrderRef: merchantRef,
		AmountCents:      amountCents,
		Currency:         s.currency,
		Channel:          input.Channel,
		RedirectTarget:   redirectURL,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.sessions.WithTx(tx).Create(ctx, session); err != nil {
			return err
		}
		entsRepo := s.ents.WithTx(tx)
		for i, item := range input.Items {
			entry := resolved[i]
			ent := &models.Entitlement{
				BuyerID:  input.BuyerID,
				ItemID:   item.ItemID,
				ItemKind: entry.Kind,
				ItemName: entry.Name,
				AssetRef: entry.AssetRef,
				Status:   enums.EntitlementStatusPending,
			}
			if err := entsRepo.UpsertPending(ctx, ent); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout records")
	}

	return &CheckoutResult{
		SessionID:      session.ID,
		GatewayOrderID: gatewayOrderID,
		AmountCents:    amountCents,
		RedirectURL:    redirectURL,
	}, nil
}

func validateInput(input CheckoutInput) error {
	if input.BuyerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}
	if !input.Channel.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment channel %q", input.Channel))
	}
	for _, item := range input.Items {
		if item.ItemID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %q: quantity must be positive", item.ItemID))
		}
		if !item.UnitPrice.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %q: unit price must be positive", item.ItemID))
		}
	}
	return nil
}

func cartTotalCents(items []CheckoutItem, currency enums.Currency) int64 {
	lines := make([]types.CartLine, len(items))
	for i, item := range items {
		lines[i] = types.CartLine{UnitPrice: item.UnitPrice, Quantity: item.Quantity}
	}
	return types.CartTotalMinorUnits(lines, currency.MinorUnitExponent())
}

func paymentSetupFailed(err error, step string) error {
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeValidation {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment setup failed").
		WithDetails(map[string]any{"step": step})
}
