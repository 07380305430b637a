package enums

// EntitlementStatus tracks whether a purchase has been confirmed by the
// gateway webhook. Only the webhook reconciler produces the paid state.
type EntitlementStatus string

const (
	EntitlementStatusPending EntitlementStatus = "pending"
	EntitlementStatusPaid    EntitlementStatus = "paid"
)
