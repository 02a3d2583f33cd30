package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Payment outcome metrics
	paymentOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_outcomes_total",
		Help: "Total number of payment attempts by canonical outcome",
	}, []string{
		"transaction_type", // AUTHORIZE, PURCHASE, CAPTURE, REFUND, CANCEL, QUERY
		"outcome",          // AUTHORISED, RECEIVED, REFUSED, PENDING, ERROR
	})

	paymentAmountMinorUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_amount_minor_units_total",
		Help: "Total attempted payment amount in provider minor units",
	}, []string{
		"transaction_type",
		"outcome",
		"currency",
	})

	transportFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_transport_failures_total",
		Help: "Total provider calls that ended without a well-formed response",
	}, []string{
		"transaction_type",
		"failure_status", // REQUEST_NOT_SEND, RESPONSE_NOT_RECEIVED, ...
	})
)

// RecordPaymentOutcome records one classified payment attempt.
// Success rate per transaction type is derived in PromQL:
// sum(rate(payment_outcomes_total{outcome="AUTHORISED"}[5m])) by (transaction_type)
// /
// sum(rate(payment_outcomes_total[5m])) by (transaction_type)
func RecordPaymentOutcome(transactionType, outcome, currency string, amountMinorUnits int64) {
	paymentOutcomesTotal.WithLabelValues(transactionType, outcome).Inc()
	if amountMinorUnits > 0 && currency != "" {
		paymentAmountMinorUnits.WithLabelValues(transactionType, outcome, currency).Add(float64(amountMinorUnits))
	}
}

// RecordTransportFailure records a provider call that never produced a
// decodable response.
func RecordTransportFailure(transactionType, failureStatus string) {
	transportFailuresTotal.WithLabelValues(transactionType, failureStatus).Inc()
}
