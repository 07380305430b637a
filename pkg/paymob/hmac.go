package paymob

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strconv"
	"strings"
)

// TransactionCallback is the processed-transaction payload Paymob POSTs to
// the webhook endpoint. Untrusted until the HMAC verifies.
type TransactionCallback struct {
	ID                   int64      `json:"id"`
	AmountCents          int64      `json:"amount_cents"`
	CreatedAt            string     `json:"created_at"`
	Currency             string     `json:"currency"`
	ErrorOccured         bool       `json:"error_occured"`
	HasParentTransaction bool       `json:"has_parent_transaction"`
	IntegrationID        int64      `json:"integration_id"`
	Is3DSecure           bool       `json:"is_3d_secure"`
	IsAuth               bool       `json:"is_auth"`
	IsCapture            bool       `json:"is_capture"`
	IsRefunded           bool       `json:"is_refunded"`
	IsStandalonePayment  bool       `json:"is_standalone_payment"`
	IsVoided             bool       `json:"is_voided"`
	Order                OrderRef   `json:"order"`
	Owner                int64      `json:"owner"`
	Pending              bool       `json:"pending"`
	SourceData           SourceData `json:"source_data"`
	Success              bool       `json:"success"`
	HMAC                 string     `json:"hmac"`
}

// OrderRef identifies the gateway order a transaction settles.
type OrderRef struct {
	ID              int64  `json:"id"`
	MerchantOrderID string `json:"merchant_order_id"`
}

// SourceData describes the instrument the payer used.
type SourceData struct {
	Pan     string `json:"pan"`
	SubType string `json:"sub_type"`
	Type    string `json:"type"`
}

// canonicalString concatenates the 20 documented fields in Paymob's fixed
// lexical order with no separator. The order must not change: it is the
// gateway's signing contract.
func (t TransactionCallback) canonicalString() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(t.AmountCents, 10))
	b.WriteString(t.CreatedAt)
	b.WriteString(t.Currency)
	b.WriteString(strconv.FormatBool(t.ErrorOccured))
	b.WriteString(strconv.FormatBool(t.HasParentTransaction))
	b.WriteString(strconv.FormatInt(t.ID, 10))
	b.WriteString(strconv.FormatInt(t.IntegrationID, 10))
	b.WriteString(strconv.FormatBool(t.Is3DSecure))
	b.WriteString(strconv.FormatBool(t.IsAuth))
	b.WriteString(strconv.FormatBool(t.IsCapture))
	b.WriteString(strconv.FormatBool(t.IsRefunded))
	b.WriteString(strconv.FormatBool(t.IsStandalonePayment))
	b.WriteString(strconv.FormatBool(t.IsVoided))
	b.WriteString(strconv.FormatInt(t.Order.ID, 10))
	b.WriteString(strconv.FormatInt(t.Owner, 10))
	b.WriteString(strconv.FormatBool(t.Pending))
	b.WriteString(t.SourceData.Pan)
	b.WriteString(t.SourceData.SubType)
	b.WriteString(t.SourceData.Type)
	b.WriteString(strconv.FormatBool(t.Success))
	return b.String()
}

// ComputeHMAC signs the canonical concatenation with HMAC-SHA512 and returns
// the lowercase hex digest.
func ComputeHMAC(t TransactionCallback, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(t.canonicalString()))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC compares the supplied digest against the recomputed one in
// constant time. Any mismatch means the payload must not be trusted.
func VerifyHMAC(t TransactionCallback, secret string) bool {
	if t.HMAC == "" {
		return false
	}
	expected := ComputeHMAC(t, secret)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(t.HMAC)))
}
