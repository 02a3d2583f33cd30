package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_calls_total",
			Help: "Total number of calls to the payment provider",
		},
		[]string{"operation", "result"},
	)

	gatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_call_duration_seconds",
			Help:    "Duration of payment provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	auditWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_writes_total",
			Help: "Total number of audit-store writes",
		},
		[]string{"operation", "status"},
	)
)

// ObserveGatewayCall records one provider call. The result label is "ok" for
// well-formed responses and the failure status otherwise.
func ObserveGatewayCall(operation, result string, duration time.Duration) {
	gatewayCallsTotal.WithLabelValues(operation, result).Inc()
	gatewayCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveAuditWrite records one audit-store append or update.
func ObserveAuditWrite(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	auditWritesTotal.WithLabelValues(operation, status).Inc()
}
