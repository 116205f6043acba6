// Package metrics holds the Prometheus instrumentation shared by the catalog
// API and the legacy import job. Collectors register on the default registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_api_requests_total",
			Help: "Total number of catalog API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_api_request_duration_seconds",
			Help:    "Catalog API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_api_active_requests",
			Help: "Current number of in-flight catalog API requests",
		},
	)

	// Projection cache
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Total number of movie projection cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Total number of movie projection cache misses",
		},
	)

	// Legacy import
	ImportRowsRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_import_rows_read_total",
			Help: "Total number of legacy movie rows read",
		},
	)

	ImportRecordsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_records_written_total",
			Help: "Total number of catalog records written by the import, by entity",
		},
		[]string{"entity"},
	)

	ImportRecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_records_skipped_total",
			Help: "Total number of catalog records already present, by entity",
		},
		[]string{"entity"},
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_import_duration_seconds",
			Help:    "Duration of a full legacy import run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	ImportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_errors_total",
			Help: "Total number of failed import runs, by error type",
		},
		[]string{"error_type"},
	)

	ImportLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_import_last_success_timestamp",
			Help: "Unix timestamp of the last successful import run",
		},
	)
)

// RecordAPIRequest records one served API request.
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup records a projection cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// RecordImportWrite records the outcome of one insert-if-absent.
func RecordImportWrite(entity string, inserted bool) {
	if inserted {
		ImportRecordsWritten.WithLabelValues(entity).Inc()
	} else {
		ImportRecordsSkipped.WithLabelValues(entity).Inc()
	}
}

// RecordImportRun records a finished import run.
func RecordImportRun(duration time.Duration, err error) {
	ImportDuration.Observe(duration.Seconds())
	if err != nil {
		ImportErrors.WithLabelValues(string(pkgerrors.TypeOf(err))).Inc()
		return
	}
	ImportLastSuccess.Set(float64(time.Now().Unix()))
}
