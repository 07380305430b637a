package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	checkoutsvc "github.com/omarhegazy/modelbay-backend/internal/checkout"
	pkgerrors "github.com/omarhegazy/modelbay-backend/pkg/errors"
	"github.com/omarhegazy/modelbay-backend/pkg/logger"
)

type stubCheckoutService struct {
	result *checkoutsvc.CheckoutResult
	err    error
	last   checkoutsvc.CheckoutInput
	calls  int
}

func (s *stubCheckoutService) Initiate(ctx context.Context, input checkoutsvc.CheckoutInput) (*checkoutsvc.CheckoutResult, error) {
	s.calls++
	s.last = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func checkoutBody() map[string]any {
	return map[string]any{
		"buyer_id": "buyer-7",
		"channel":  "card",
		"items": []map[string]any{
			{"item_id": "model-42", "name": "Citadel Scan", "unit_price": "75.00", "quantity": 1},
		},
		"billing": map[string]any{
			"email":        "buyer@example.com",
			"first_name":   "Omar",
			"last_name":    "Hegazy",
			"phone_number": "+201000000000",
		},
	}
}

func postCheckout(t *testing.T, handler http.HandlerFunc, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutReturnsRedirectURL(t *testing.T) {
	sessionID := uuid.New()
	svc := &stubCheckoutService{result: &checkoutsvc.CheckoutResult{
		SessionID:      sessionID,
		GatewayOrderID: 5512345,
		AmountCents:    7500,
		RedirectURL:    "https://accept.example.com/api/acceptance/iframes/700123?payment_token=tok",
	}}
	handler := Checkout(svc, testLogger())

	rec := postCheckout(t, handler, checkoutBody())

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data struct {
			SessionID      uuid.UUID `json:"session_id"`
			GatewayOrderID int64     `json:"gateway_order_id"`
			AmountCents    int64     `json:"amount_cents"`
			RedirectURL    string    `json:"redirect_url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, sessionID, resp.Data.SessionID)
	assert.Equal(t, int64(5512345), resp.Data.GatewayOrderID)
	assert.Equal(t, int64(7500), resp.Data.AmountCents)
	assert.Contains(t, resp.Data.RedirectURL, "payment_token=")

	require.Equal(t, 1, svc.calls)
	assert.Equal(t, "buyer-7", svc.last.BuyerID)
	require.Len(t, svc.last.Items, 1)
	assert.Equal(t, "model-42", svc.last.Items[0].ItemID)
	// Address placeholders are normalized before the input reaches the service.
	assert.Equal(t, "NA", svc.last.Billing.Street)
}

func TestCheckoutRejectsUnknownChannel(t *testing.T) {
	svc := &stubCheckoutService{}
	handler := Checkout(svc, testLogger())

	body := checkoutBody()
	body["channel"] = "cash"
	rec := postCheckout(t, handler, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.calls)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	svc := &stubCheckoutService{}
	handler := Checkout(svc, testLogger())

	body := checkoutBody()
	body["items"] = []map[string]any{}
	rec := postCheckout(t, handler, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.calls)
}

func TestCheckoutRejectsUnknownFields(t *testing.T) {
	svc := &stubCheckoutService{}
	handler := Checkout(svc, testLogger())

	body := checkoutBody()
	body["total_cents"] = 1 // client-sent totals are not part of the contract
	rec := postCheckout(t, handler, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.calls)
}

func TestCheckoutMapsServiceErrors(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeDependency, "payment setup failed")}
	handler := Checkout(svc, testLogger())

	rec := postCheckout(t, handler, checkoutBody())

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "DEPENDENCY_ERROR", resp.Error.Code)
}
