package paymobwebhook

import (
	"context"
	"strconv"
	"time"

	"github.com/omarhegazy/modelbay-backend/internal/checkout"
	"github.com/omarhegazy/modelbay-backend/internal/entitlements"
	pkgerrors "github.com/omarhegazy/modelbay-backend/pkg/errors"
	"github.com/omarhegazy/modelbay-backend/pkg/logger"
	"github.com/omarhegazy/modelbay-backend/pkg/metrics"
	"github.com/omarhegazy/modelbay-backend/pkg/paymob"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	EntitlementsRepo  entitlements.Repository
	SessionRepo       checkout.SessionRepository
	TransactionRunner txRunner
	Logger            *logger.Logger
	Metrics           *metrics.PaymentMetrics
}

// Service reconciles gateway transaction callbacks into paid entitlements.
// It is the only writer that moves an entitlement to paid.
type Service struct {
	ents     entitlements.Repository
	sessions checkout.SessionRepository
	txRunner txRunner
	logg     *logger.Logger
	metrics  *metrics.PaymentMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.EntitlementsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "entitlements repo required")
	}
	if params.SessionRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		ents:     params.EntitlementsRepo,
		sessions: params.SessionRepo,
		txRunner: params.TransactionRunner,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// HandleTransaction applies one verified transaction callback. Unsuccessful
// transactions and malformed merchant references are acknowledged without
// writing anything; only a persistence failure returns an error, which tells
// the gateway to redeliver.
func (s *Service) HandleTransaction(ctx context.Context, cb *paymob.TransactionCallback) error {
	if cb == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction callback required")
	}

	entry := s.logg.WithGatewayOrderID(ctx, cb.Order.ID)

	if !cb.Success {
		s.logg.Info(entry, "transaction unsuccessful, nothing to reconcile")
		s.metrics.ObserveWebhook("unsuccessful")
		return nil
	}

	itemIDs, buyerID, err := checkout.ParseMerchantOrderRef(cb.Order.MerchantOrderID)
	if err != nil {
		// Not ours to retry: the reference is wrong in the gateway's
		// records and will be wrong on every redelivery.
		s.logg.Warn(entry, "unparseable merchant order reference: "+err.Error())
		s.metrics.ObserveWebhook("malformed_ref")
		return nil
	}

	entry = s.logg.WithBuyerID(entry, buyerID)

	session, err := s.sessions.FindByGatewayOrderID(ctx, cb.Order.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	if session == nil {
		s.logg.Warn(entry, "no checkout session for gateway order, reconciling from reference only")
	} else if session.AmountCents != cb.AmountCents {
		s.logg.Warn(entry, "callback amount differs from session amount")
	}

	paidAt := time.Now().UTC()
	var updated int
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.ents.WithTx(tx)
		for _, itemID := range itemIDs {
			ok, err := repo.MarkPaid(ctx, buyerID, itemID, paidAt)
			if err != nil {
				return err
			}
			if ok {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.ObserveWebhook("error")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark entitlements paid")
	}

	if updated == 0 {
		// Already paid, or the pending rows never existed. Either way
		// the delivery is settled.
		s.logg.Info(entry, "no entitlements transitioned, delivery acknowledged")
		s.metrics.ObserveWebhook("duplicate")
		return nil
	}

	s.logg.Info(entry, "entitlements marked paid: "+strconv.Itoa(updated))
	s.metrics.ObserveWebhook("paid")
	return nil
}
