// Package metrics provides Prometheus instrumentation for zipdeid runs:
// row and field throughput, redaction counts and transform latency.
// Metrics register themselves via promauto; Serve exposes them over HTTP
// when the operator opts in.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RowsProcessed tracks the total number of data rows processed.
	// Labels: status (success/failure)
	RowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zipdeid_rows_processed_total",
			Help: "Total number of data rows processed",
		},
		[]string{"status"},
	)

	// FieldsTransformed tracks the total number of ZIP fields rewritten.
	// Labels: precision (2/3/smart)
	FieldsTransformed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zipdeid_fields_transformed_total",
			Help: "Total number of ZIP fields transformed",
		},
		[]string{"precision"},
	)

	// RedactionsTotal tracks fields replaced by the redaction marker.
	RedactionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zipdeid_redactions_total",
			Help: "Total number of fields replaced by the redaction marker",
		},
	)

	// UnresolvedColumns tracks column selectors that matched nothing.
	UnresolvedColumns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zipdeid_unresolved_columns_total",
			Help: "Total number of column selectors that could not be resolved",
		},
	)

	// TransformLatency tracks per-row transform latency in nanoseconds.
	TransformLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "zipdeid_transform_latency_nanoseconds",
			Help: "Per-row transform latency in nanoseconds",
			Buckets: []float64{
				100,   // 100ns
				1000,  // 1μs
				10000, // 10μs
				1e5,   // 100μs
				1e6,   // 1ms
				1e7,   // 10ms
			},
		},
	)
)

// Serve exposes the metrics registry over HTTP at /metrics. It blocks,
// so callers run it in a goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
