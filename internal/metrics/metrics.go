package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the tracker
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Import Metrics
	ImportRunsTotal    *prometheus.CounterVec
	ImportDuration     *prometheus.HistogramVec
	ImportRowsTotal    *prometheus.CounterVec
	ImportDroppedTotal *prometheus.CounterVec
	ImportBatchesTotal *prometheus.CounterVec
	MirrorDeletedTotal prometheus.Counter
	CSVFetchAttempts   *prometheus.CounterVec

	// Query Metrics
	SearchTierHitsTotal *prometheus.CounterVec
}

// NewMetricsRegistry registers the tracker metrics on the default registerer
func NewMetricsRegistry() *MetricsRegistry {
	return NewMetricsRegistryWith(prometheus.DefaultRegisterer)
}

// NewMetricsRegistryWith registers on reg. Tests pass prometheus.NewRegistry().
func NewMetricsRegistryWith(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tracker_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_cache_hits_total",
				Help: "Total cache hits by cache name",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_cache_misses_total",
				Help: "Total cache misses by cache name",
			},
			[]string{"cache"},
		),

		ImportRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_import_runs_total",
				Help: "Import runs by outcome (ok, error, dryrun, conflict)",
			},
			[]string{"outcome"},
		),
		ImportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_import_duration_seconds",
				Help:    "Import phase duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"phase"},
		),
		ImportRowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_import_rows_total",
				Help: "Rows written per table",
			},
			[]string{"table"},
		),
		ImportDroppedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_import_dropped_rows_total",
				Help: "Rows dropped for missing required keys per table",
			},
			[]string{"table"},
		),
		ImportBatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_import_batches_total",
				Help: "Upsert batches per table and result",
			},
			[]string{"table", "result"},
		),
		MirrorDeletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tracker_mirror_deleted_shipments_total",
				Help: "Shipments deleted because they left the source sheet",
			},
		),
		CSVFetchAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_csv_fetch_attempts_total",
				Help: "CSV fetch attempts by strategy and result",
			},
			[]string{"strategy", "result"},
		),

		SearchTierHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_search_tier_hits_total",
				Help: "Search requests answered per tier (exact, contains, container, none)",
			},
			[]string{"tier"},
		),
	}
}
