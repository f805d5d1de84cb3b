package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors shared by the service and the stores:
// requests by route and status, request and store query durations, and
// cache lookups by result.
type Metrics struct {
	Requests           *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	StoreQueryDuration *prometheus.HistogramVec
	CacheLookups       *prometheus.CounterVec
}

// NewMetrics registers every collector with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "employees_http_requests_total",
			Help: "Total number of handled http requests.",
		}, []string{"route", "status"}),
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "employees_http_request_duration_seconds",
			Help:    "Duration of handled http requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		StoreQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "employees_store_query_duration_seconds",
			Help:    "Duration of store queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}), // operation: find_all, find_by_id, exists_by_id, save, delete_by_id
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "employees_cache_lookups_total",
			Help: "Total number of cache lookups by result.",
		}, []string{"result"}),
	}
}
