package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"carwise/internal/core"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveRequest("autodev", 200, 120*time.Millisecond)
	m.ObserveRequest("autodev", 200, 80*time.Millisecond)
	m.ObserveRequest("carquery", 403, 10*time.Millisecond)
	m.ObserveOutcome("carquery", core.OutcomeDegraded)
	m.ObserveCache("nhtsa_safety", true)
	m.ObserveCache("nhtsa_safety", false)
	m.ObserveSearch(12, 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("autodev", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("carquery", "403")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.adapterOutcomes.WithLabelValues("carquery", "degraded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("nhtsa_safety", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("nhtsa_safety", "miss")))

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsIsNoOp(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("autodev", 200, time.Second)
	m.ObserveOutcome("autodev", core.OutcomeOK)
	m.ObserveCache("autodev", true)
	m.ObserveSearch(1, 1)
}
