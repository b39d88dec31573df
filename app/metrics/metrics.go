package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const ServiceName = "seo-media"

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code", "service"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "service"},
	)

	// Content store metrics
	StoreRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_store_requests_total",
			Help: "Total number of content store requests",
		},
		[]string{"store", "endpoint", "status"},
	)

	StoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "content_store_request_duration_seconds",
			Help:    "Content store request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "endpoint"},
	)

	// Result cache metrics
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_cache_lookups_total",
			Help: "Total number of result cache lookups",
		},
		[]string{"endpoint", "result"},
	)

	// Source import metrics
	ArticlesImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_imported_total",
			Help: "Total number of articles imported from sources",
		},
		[]string{"source", "status"},
	)

	TasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasks_total",
			Help: "Total number of executed background tasks",
		},
		[]string{"type", "status"},
	)

	TaskQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "task_queue_depth",
			Help: "Number of tasks waiting in the scheduler queue",
		},
	)

	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "application_info",
			Help: "Application information",
		},
		[]string{"service", "version", "store"},
	)
)

func Init(version, store string) {
	ApplicationInfo.WithLabelValues(ServiceName, version, store).Set(1)
}

func ObserveStoreRequest(store, endpoint string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StoreRequestsTotal.WithLabelValues(store, endpoint, status).Inc()
	StoreRequestDuration.WithLabelValues(store, endpoint).Observe(seconds)
}

func ObserveCacheLookup(endpoint string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(endpoint, result).Inc()
}
