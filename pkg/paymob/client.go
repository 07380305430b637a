package paymob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/omarhegazy/modelbay-backend/pkg/config"
	"github.com/omarhegazy/modelbay-backend/pkg/enums"
	pkgerrors "github.com/omarhegazy/modelbay-backend/pkg/errors"
	"github.com/omarhegazy/modelbay-backend/pkg/logger"
)

const (
	authPath       = "/api/auth/tokens"
	orderPath      = "/api/ecommerce/orders"
	paymentKeyPath = "/api/acceptance/payment_keys"
	iframePath     = "/api/acceptance/iframes"
)

var (
	errAPIKeyRequired     = errors.New("paymob api key is required")
	errHMACSecretRequired = errors.New("paymob hmac secret is required")
	errIframeIDRequired   = errors.New("paymob iframe id is required")
	errLoggerRequired     = errors.New("paymob logger is required")
)

// Client wraps Paymob's Accept API with centralized auth, timeouts, logging,
// and error mapping. It is constructed once at startup and injected into the
// services that need it.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	hmacSecret    string
	iframeID      string
	callbackURL   string
	integrations  map[enums.PaymentChannel]int64
	callTimeout   time.Duration
	paymentKeyTTL time.Duration
	logger        *logger.Logger
}

// NewClient validates the credentials and builds the gateway wrapper.
func NewClient(ctx context.Context, cfg config.PaymobConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	hmacSecret := strings.TrimSpace(cfg.HMACSecret)
	if hmacSecret == "" {
		return nil, errHMACSecretRequired
	}
	iframeID := strings.TrimSpace(cfg.IframeID)
	if iframeID == "" {
		return nil, errIframeIDRequired
	}
	if cfg.CardIntegrationID == 0 || cfg.WalletIntegrationID == 0 {
		return nil, errors.New("paymob integration ids are required")
	}

	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	paymentKeyTTL := cfg.PaymentKeyTTL
	if paymentKeyTTL <= 0 {
		paymentKeyTTL = time.Hour
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: callTimeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      apiKey,
		hmacSecret:  hmacSecret,
		iframeID:    iframeID,
		callbackURL: strings.TrimSpace(cfg.CallbackURL),
		callTimeout: callTimeout,
		integrations: map[enums.PaymentChannel]int64{
			enums.PaymentChannelCard:   cfg.CardIntegrationID,
			enums.PaymentChannelWallet: cfg.WalletIntegrationID,
		},
		paymentKeyTTL: paymentKeyTTL,
		logger:        logg,
	}

	logg.Info(ctx, "paymob client initialized")
	return c, nil
}

// HMACSecret returns the shared webhook secret.
func (c *Client) HMACSecret() string {
	if c == nil {
		return ""
	}
	return c.hmacSecret
}

// IntegrationID resolves the gateway integration for a payment channel.
func (c *Client) IntegrationID(channel enums.PaymentChannel) (int64, error) {
	id, ok := c.integrations[channel]
	if !ok || id == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment channel %q", channel))
	}
	return id, nil
}

// Authenticate exchanges the static API key for a short-lived auth token.
// The call is idempotent, so one retry is allowed on transport failure.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	c.log(ctx, "request", "auth_token", nil)

	var resp authResponse
	err := c.post(ctx, authPath, authRequest{APIKey: c.apiKey}, &resp)
	if err != nil && retryableTransport(err) {
		c.log(ctx, "retry", "auth_token", map[string]any{"error": err.Error()})
		err = c.post(ctx, authPath, authRequest{APIKey: c.apiKey}, &resp)
	}
	if err != nil {
		c.log(ctx, "error", "auth_token", map[string]any{"error": err.Error()})
		return "", err
	}
	if resp.Token == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "paymob auth returned no token")
	}

	c.log(ctx, "response", "auth_token", nil)
	return resp.Token, nil
}

// RegisterOrder records the server-computed total against the auth token and
// returns the gateway order id. Never retried: Paymob enforces merchant order
// reference uniqueness and a blind retry risks a duplicate order.
func (c *Client) RegisterOrder(ctx context.Context, authToken string, params OrderParams) (int64, error) {
	c.log(ctx, "request", "register_order", map[string]any{
		"amount_cents":       params.AmountCents,
		"currency":           params.Currency,
		"merchant_order_ref": params.MerchantOrderID,
	})

	req := orderRequest{
		AuthToken:       authToken,
		DeliveryNeeded:  false,
		AmountCents:     params.AmountCents,
		Currency:        params.Currency,
		MerchantOrderID: params.MerchantOrderID,
		Items:           params.Items,
	}
	var resp orderResponse
	if err := c.post(ctx, orderPath, req, &resp); err != nil {
		c.log(ctx, "error", "register_order", map[string]any{"error": err.Error()})
		return 0, err
	}
	if resp.ID == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "paymob order registration returned no id")
	}

	c.log(ctx, "response", "register_order", map[string]any{"gateway_order_id": resp.ID})
	return resp.ID, nil
}

// PaymentKey binds the auth token, order, amount, billing data, and
// integration into the token the hosted page is opened with.
func (c *Client) PaymentKey(ctx context.Context, authToken string, params PaymentKeyParams) (string, error) {
	c.log(ctx, "request", "payment_key", map[string]any{
		"gateway_order_id": params.OrderID,
		"amount_cents":     params.AmountCents,
		"integration_id":   params.IntegrationID,
	})

	req := paymentKeyRequest{
		AuthToken:         authToken,
		AmountCents:       strconv.FormatInt(params.AmountCents, 10),
		ExpirationSeconds: int64(c.paymentKeyTTL.Seconds()),
		OrderID:           params.OrderID,
		BillingData:       NormalizeBillingData(params.Billing),
		Currency:          params.Currency,
		IntegrationID:     params.IntegrationID,
		NotificationURL:   c.callbackURL,
	}
	var resp paymentKeyResponse
	if err := c.post(ctx, paymentKeyPath, req, &resp); err != nil {
		c.log(ctx, "error", "payment_key", map[string]any{"error": err.Error()})
		return "", err
	}
	if resp.Token == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "paymob payment key returned no token")
	}

	c.log(ctx, "response", "payment_key", nil)
	return resp.Token, nil
}

// RedirectURL builds the hosted payment page URL for a payment key.
func (c *Client) RedirectURL(paymentToken string) string {
	return fmt.Sprintf("%s%s/%s?payment_token=%s", c.baseURL, iframePath, c.iframeID, url.QueryEscape(paymentToken))
}

func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode paymob request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build paymob request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("paymob %s call failed", path))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read paymob response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := domainCodeForStatus(resp.StatusCode)
		return pkgerrors.New(code, fmt.Sprintf("paymob %s returned status %d", path, resp.StatusCode))
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode paymob response")
	}
	return nil
}

func retryableTransport(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil {
		return false
	}
	return typed.Code() == pkgerrors.CodeDependency
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("paymob %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("paymob %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "key", "secret", "email", "phone", "pan"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}
