package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	assert.NotNil(t, m.OperationsTotal)
	assert.NotNil(t, m.OperationsInFlight)
	assert.NotNil(t, m.OperationDuration)
	assert.NotNil(t, m.ExecuteRejectedTotal)
	assert.NotNil(t, m.StorageSyncFailures)

	assert.Panics(t, func() { m.Enable(reg) }, "double registration")

	m.Disable(reg)
	assert.NotPanics(t, func() { m.Enable(reg) })
}

func TestMetrics_Lifecycle(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Started("mark_item")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OperationsInFlight.WithLabelValues("mark_item")))

	m.Finished("mark_item", OutcomeSuccess, "", 10*time.Millisecond, true)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.OperationsInFlight.WithLabelValues("mark_item")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OperationsTotal.WithLabelValues("mark_item", OutcomeSuccess, "")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OperationDuration))

	m.Finished("mark_item", OutcomeFailure, "input", 0, false)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OperationsTotal.WithLabelValues("mark_item", OutcomeFailure, "input")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.OperationsInFlight.WithLabelValues("mark_item")))

	m.Rejected("mark_item")
	m.Rejected("mark_item")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ExecuteRejectedTotal.WithLabelValues("mark_item")))

	m.StorageFailed("get_feeds")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StorageSyncFailures.WithLabelValues("get_feeds")))
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Started("x")
		m.Finished("x", OutcomeSuccess, "", time.Second, true)
		m.Rejected("x")
		m.StorageFailed("x")
	})
}
