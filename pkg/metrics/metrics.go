package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ExtractionsTotal    *prometheus.CounterVec
	ExtractionDuration  *prometheus.HistogramVec
	StoreRequestsTotal  *prometheus.CounterVec
)

var initOnce sync.Once

// Init registers all collectors. Only the first call registers; later calls
// are no-ops so tests can call Init freely.
func Init() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)

		ExtractionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extractions_total",
				Help: "Total number of extraction attempts.",
			},
			[]string{"status", "error_type"}, // status: success, failure
		)

		ExtractionDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "extraction_duration_seconds",
				Help:    "Duration of extraction calls.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30, 60, 120},
			},
			[]string{"mode"},
		)

		StoreRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "record_store_requests_total",
				Help: "Total number of record-store API round-trips.",
			},
			[]string{"operation", "status"}, // status: success, failure
		)
	})
}
