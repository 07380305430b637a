package checkout

import (
	"context"
	"errors"

	"github.com/omarhegazy/modelbay-backend/pkg/db"
	"github.com/omarhegazy/modelbay-backend/pkg/db/models"
	pkgerrors "github.com/omarhegazy/modelbay-backend/pkg/errors"
	"gorm.io/gorm"
)

// SessionRepository persists write-once checkout sessions.
type SessionRepository interface {
	WithTx(tx *gorm.DB) SessionRepository
	Create(ctx context.Context, session *models.CheckoutSession) error
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID int64) (*models.CheckoutSession, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository builds a session repository bound to the provided DB.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) WithTx(tx *gorm.DB) SessionRepository {
	if tx == nil {
		return r
	}
	return &sessionRepository{db: tx}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.CheckoutSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "checkout session already recorded for gateway order")
		}
		return err
	}
	return nil
}

func (r *sessionRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID int64) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	err := r.db.WithContext(ctx).
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}
