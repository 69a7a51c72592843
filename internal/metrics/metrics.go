// Package metrics provides Prometheus metrics for the pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	// Record metrics
	RecordsRead    *prometheus.CounterVec
	RecordsWritten *prometheus.CounterVec
	RecordsDropped *prometheus.CounterVec
	Duplicates     *prometheus.CounterVec
	FieldsNulled   *prometheus.CounterVec
	FactsRejected  *prometheus.CounterVec

	// Timing metrics
	TableTransformDuration *prometheus.HistogramVec
	TablePublishDuration   *prometheus.HistogramVec
	RunDuration            *prometheus.HistogramVec

	// Size metrics
	TableRows  *prometheus.HistogramVec
	TableBytes *prometheus.HistogramVec

	// Pipeline metrics
	TablesInFlight prometheus.Gauge

	// Error metrics
	SourceErrors  *prometheus.CounterVec
	StorageErrors *prometheus.CounterVec
	CatalogErrors *prometheus.CounterVec
	AuditErrors   *prometheus.CounterVec

	// Run outcome: 1 on success, 0 on failure, labeled by layer.
	LayerUp *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// Init initializes the metrics package with global metrics.
// Call this once at startup.
func Init(namespace string) *Metrics {
	if namespace == "" {
		namespace = "medallion_etl"
	}

	m := &Metrics{
		RecordsRead: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_read_total",
				Help:      "Total number of raw records read",
			},
			[]string{"layer", "table"},
		),
		RecordsWritten: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_written_total",
				Help:      "Total number of records published",
			},
			[]string{"layer", "table"},
		),
		RecordsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_dropped_total",
				Help:      "Total number of records dropped for a missing identifier",
			},
			[]string{"layer", "table"},
		),
		Duplicates: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "duplicates_total",
				Help:      "Total number of losing record versions discarded by dedup",
			},
			[]string{"layer", "table"},
		),
		FieldsNulled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fields_nulled_total",
				Help:      "Total number of field values nulled by normalization",
			},
			[]string{"layer", "table"},
		),
		FactsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "facts_rejected_total",
				Help:      "Total number of fact records rejected for dangling keys",
			},
			[]string{"table"},
		),
		TableTransformDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "table_transform_duration_seconds",
				Help:      "Time to transform one table",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~100s
			},
			[]string{"layer", "table"},
		),
		TablePublishDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "table_publish_duration_seconds",
				Help:      "Time to encode and publish one table",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
			[]string{"layer", "table"},
		),
		RunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Total duration of one layer pass",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1h
			},
			[]string{"layer"},
		),
		TableRows: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "table_rows",
				Help:      "Number of rows per published table",
				Buckets:   prometheus.ExponentialBuckets(100, 2, 10), // 100 to ~100k
			},
			[]string{"layer", "table"},
		),
		TableBytes: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "table_bytes",
				Help:      "Size of published tables in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 2, 15), // 1KB to ~32MB
			},
			[]string{"layer", "table"},
		),
		TablesInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tables_in_flight",
				Help:      "Number of tables currently being transformed",
			},
		),
		SourceErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_errors_total",
				Help:      "Total number of source read errors",
			},
			[]string{"table"},
		),
		StorageErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_errors_total",
				Help:      "Total number of storage write errors",
			},
			[]string{"layer", "table"},
		),
		CatalogErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_errors_total",
				Help:      "Total number of run catalog errors",
			},
			[]string{"namespace"},
		),
		AuditErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_errors_total",
				Help:      "Total number of audit trail emission errors",
			},
			[]string{"run_id"},
		),
		LayerUp: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "layer_up",
				Help:      "Whether the last pass for a layer succeeded",
			},
			[]string{"layer"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the global metrics instance.
// Returns nil if Init has not been called.
func Get() *Metrics {
	return defaultMetrics
}

// StartServer starts an HTTP server for Prometheus metrics scraping.
// Blocks until the server exits.
func StartServer(address string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return http.ListenAndServe(address, mux)
}

// ObserveTable records the row count and byte size of one published table.
func (m *Metrics) ObserveTable(layer, table string, rows, bytes float64) {
	m.TableRows.WithLabelValues(layer, table).Observe(rows)
	m.TableBytes.WithLabelValues(layer, table).Observe(bytes)
	m.RecordsWritten.WithLabelValues(layer, table).Add(rows)
}

// ObserveSilverStats records the quality counters of one Silver table pass.
func (m *Metrics) ObserveSilverStats(table string, read, dropped, duplicates, nulled float64) {
	m.RecordsRead.WithLabelValues("silver", table).Add(read)
	m.RecordsDropped.WithLabelValues("silver", table).Add(dropped)
	m.Duplicates.WithLabelValues("silver", table).Add(duplicates)
	m.FieldsNulled.WithLabelValues("silver", table).Add(nulled)
}

// SetLayerUp records the outcome of one layer pass.
func (m *Metrics) SetLayerUp(layer string, ok bool) {
	v := 0.0
	if ok {
		v = 1
	}
	m.LayerUp.WithLabelValues(layer).Set(v)
}
