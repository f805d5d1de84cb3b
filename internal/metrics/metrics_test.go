package metrics_test

import (
	"testing"

	"github.com/antonio-alexander/go-employees/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	m.Requests.WithLabelValues("employee_read", "200").Inc()
	m.Requests.WithLabelValues("employee_read", "200").Inc()
	m.CacheLookups.WithLabelValues("hit").Inc()
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Requests.WithLabelValues("employee_read", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))

	// registering twice against the same registry panics
	assert.Panics(t, func() { _ = metrics.NewMetrics(reg) })
}
