package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omarhegazy/modelbay-backend/api/responses"
	"github.com/omarhegazy/modelbay-backend/api/validators"
	checkoutsvc "github.com/omarhegazy/modelbay-backend/internal/checkout"
	"github.com/omarhegazy/modelbay-backend/pkg/enums"
	pkgerrors "github.com/omarhegazy/modelbay-backend/pkg/errors"
	"github.com/omarhegazy/modelbay-backend/pkg/logger"
	"github.com/omarhegazy/modelbay-backend/pkg/paymob"
)

// Checkout starts a payment attempt for the submitted cart and returns the
// hosted payment page URL the client should redirect to.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]checkoutsvc.CheckoutItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, checkoutsvc.CheckoutItem{
				ItemID:    item.ItemID,
				Name:      item.Name,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
			})
		}

		result, err := svc.Initiate(r.Context(), checkoutsvc.CheckoutInput{
			Items:   items,
			BuyerID: payload.BuyerID,
			Billing: paymob.NormalizeBillingData(payload.Billing),
			Channel: enums.PaymentChannel(payload.Channel),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

type checkoutRequest struct {
	BuyerID string                `json:"buyer_id" validate:"required"`
	Channel string                `json:"channel" validate:"required,oneof=card mobile_wallet"`
	Items   []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	Billing paymob.BillingData    `json:"billing"`
}

type checkoutItemRequest struct {
	ItemID    string          `json:"item_id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
}

type checkoutResponse struct {
	SessionID      uuid.UUID `json:"session_id"`
	GatewayOrderID int64     `json:"gateway_order_id"`
	AmountCents    int64     `json:"amount_cents"`
	RedirectURL    string    `json:"redirect_url"`
}

func newCheckoutResponse(result *checkoutsvc.CheckoutResult) checkoutResponse {
	if result == nil {
		return checkoutResponse{}
	}
	return checkoutResponse{
		SessionID:      result.SessionID,
		GatewayOrderID: result.GatewayOrderID,
		AmountCents:    result.AmountCents,
		RedirectURL:    result.RedirectURL,
	}
}
