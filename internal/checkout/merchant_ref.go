package checkout

import (
	"fmt"
	"strings"
)

// The gateway echoes merchant_order_id back verbatim in the webhook; it is
// the only channel that carries our identifiers through the hosted payment
// page. Format: "<itemId>[+itemId...]|<buyerId>".
const (
	refPartDelimiter  = "|"
	refItemsDelimiter = "+"
)

// MerchantOrderRef packs the purchased item ids and the buyer id into the
// gateway's merchant order reference field.
func MerchantOrderRef(itemIDs []string, buyerID string) string {
	return strings.Join(itemIDs, refItemsDelimiter) + refPartDelimiter + buyerID
}

// ParseMerchantOrderRef splits a merchant order reference back into item ids
// and buyer id. The split is strict: exactly two non-empty segments, and no
// empty item id inside the first. Anything else is a data error the webhook
// acknowledges without acting on.
func ParseMerchantOrderRef(ref string) ([]string, string, error) {
	parts := strings.Split(ref, refPartDelimiter)
	if len(parts) != 2 {
		return nil, "", fmt.Errorf("merchant order ref %q: expected 2 segments, got %d", ref, len(parts))
	}
	itemsPart, buyerID := parts[0], parts[1]
	if itemsPart == "" || buyerID == "" {
		return nil, "", fmt.Errorf("merchant order ref %q: empty segment", ref)
	}
	itemIDs := strings.Split(itemsPart, refItemsDelimiter)
	for _, id := range itemIDs {
		if id == "" {
			return nil, "", fmt.Errorf("merchant order ref %q: empty item id", ref)
		}
	}
	return itemIDs, buyerID, nil
}
