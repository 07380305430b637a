package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics counts checkout attempts and webhook deliveries by outcome.
type PaymentMetrics struct {
	checkouts *prometheus.CounterVec
	webhooks  *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by payment channel and outcome.",
	}, []string{"channel", "outcome"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhooks_total",
		Help: "Gateway webhook deliveries by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(checkouts, webhooks)
	return &PaymentMetrics{
		checkouts: checkouts,
		webhooks:  webhooks,
	}
}

// ObserveCheckout records one checkout attempt outcome.
func (m *PaymentMetrics) ObserveCheckout(channel, outcome string) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(channel), normalizeLabel(outcome)).Inc()
}

// ObserveWebhook records one webhook delivery outcome.
func (m *PaymentMetrics) ObserveWebhook(outcome string) {
	if m == nil || m.webhooks == nil {
		return
	}
	m.webhooks.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
