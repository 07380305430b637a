package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/omarhegazy/modelbay-backend/api/responses"
	"github.com/omarhegazy/modelbay-backend/pkg/logger"
	"github.com/omarhegazy/modelbay-backend/pkg/paymob"
)

const maxCallbackBody = 1 << 20

type PaymobWebhookService interface {
	HandleTransaction(ctx context.Context, cb *paymob.TransactionCallback) error
}

type paymobWebhookGuard interface {
	CheckAndMark(ctx context.Context, transactionID string) (bool, error)
	Delete(ctx context.Context, transactionID string) error
}

type paymobClient interface {
	HMACSecret() string
}

type transactionEnvelope struct {
	Type string                     `json:"type"`
	Obj  paymob.TransactionCallback `json:"obj"`
}

// PaymobWebhook handles processed-transaction callbacks from the payment
// gateway. Responses here are wire-exact: the gateway treats anything other
// than a 2xx as a delivery failure and redelivers.
func PaymobWebhook(svc PaymobWebhookService, client paymobClient, guard paymobWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || client == nil || guard == nil {
			responses.WriteRaw(w, http.StatusInternalServerError, map[string]string{"error": "webhook unavailable"})
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
		if err != nil {
			responses.WriteRaw(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
			return
		}

		var envelope transactionEnvelope
		if err := json.Unmarshal(payload, &envelope); err != nil {
			responses.WriteRaw(w, http.StatusBadRequest, map[string]string{"error": "malformed payload"})
			return
		}
		cb := envelope.Obj

		// The gateway sends the digest as a query parameter; older
		// configurations embed it in the body instead.
		if qh := strings.TrimSpace(r.URL.Query().Get("hmac")); qh != "" {
			cb.HMAC = qh
		}

		if !paymob.VerifyHMAC(cb, client.HMACSecret()) {
			if logg != nil {
				logg.Warn(ctx, "transaction callback failed signature verification")
			}
			responses.WriteRaw(w, http.StatusBadRequest, map[string]string{"error": "Invalid HMAC"})
			return
		}

		transactionID := strconv.FormatInt(cb.ID, 10)

		alreadyProcessed, err := guard.CheckAndMark(ctx, transactionID)
		if err != nil {
			responses.WriteRaw(w, http.StatusInternalServerError, map[string]string{"error": "idempotency check failed"})
			return
		}
		if alreadyProcessed {
			responses.WriteRaw(w, http.StatusOK, map[string]bool{"ok": true})
			return
		}

		if err := svc.HandleTransaction(ctx, &cb); err != nil {
			_ = guard.Delete(ctx, transactionID)
			if logg != nil {
				logg.Error(ctx, "transaction callback handling failed", err)
			}
			responses.WriteRaw(w, http.StatusInternalServerError, map[string]string{"error": "processing failed"})
			return
		}

		responses.WriteRaw(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
