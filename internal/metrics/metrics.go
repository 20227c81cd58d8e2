package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics records operation lifecycles. A nil *Metrics records nothing.
type Metrics struct {
	OperationsTotal      *prometheus.CounterVec
	OperationsInFlight   *prometheus.GaugeVec
	OperationDuration    *prometheus.HistogramVec
	ExecuteRejectedTotal *prometheus.CounterVec
	StorageSyncFailures  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedsync_operations_total",
			Help: "total number of finished operation attempts",
		}, []string{"operation", "outcome", "kind"}),
		OperationsInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "feedsync_operations_in_flight",
			Help: "number of in flight operation attempts",
		}, []string{"operation"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedsync_operation_duration_seconds",
			Help:    "duration of operation attempts from dispatch to outcome",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		ExecuteRejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedsync_execute_rejected_total",
			Help: "total number of execute calls rejected because an attempt was in flight",
		}, []string{"operation"}),
		StorageSyncFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedsync_storage_sync_failures_total",
			Help: "total number of failed local storage updates after a successful request",
		}, []string{"operation"}),
	}

	metrics.Enable(reg)
	return metrics
}

func (m *Metrics) Enable(reg prometheus.Registerer) {
	reg.MustRegister(m.OperationsTotal)
	reg.MustRegister(m.OperationsInFlight)
	reg.MustRegister(m.OperationDuration)
	reg.MustRegister(m.ExecuteRejectedTotal)
	reg.MustRegister(m.StorageSyncFailures)
}

func (m *Metrics) Disable(reg prometheus.Registerer) {
	reg.Unregister(m.OperationsTotal)
	reg.Unregister(m.OperationsInFlight)
	reg.Unregister(m.OperationDuration)
	reg.Unregister(m.ExecuteRejectedTotal)
	reg.Unregister(m.StorageSyncFailures)
}

// Started marks an attempt of operation as in flight.
func (m *Metrics) Started(operation string) {
	if m == nil {
		return
	}
	m.OperationsInFlight.WithLabelValues(operation).Inc()
}

// Finished records the outcome of an attempt. kind is empty on success.
// inFlight must be true when Started was called for this attempt.
func (m *Metrics) Finished(operation, outcome, kind string, elapsed time.Duration, inFlight bool) {
	if m == nil {
		return
	}
	if inFlight {
		m.OperationsInFlight.WithLabelValues(operation).Dec()
		m.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
	m.OperationsTotal.WithLabelValues(operation, outcome, kind).Inc()
}

func (m *Metrics) Rejected(operation string) {
	if m == nil {
		return
	}
	m.ExecuteRejectedTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) StorageFailed(operation string) {
	if m == nil {
		return
	}
	m.StorageSyncFailures.WithLabelValues(operation).Inc()
}
