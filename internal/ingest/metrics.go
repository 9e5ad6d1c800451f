package ingest

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the loader's progress counters. They live on the loader's own registry.
type Metrics struct {
	rowsProcessed *prometheus.CounterVec
	rowsFailed    *prometheus.CounterVec
	batchesTotal  *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
}

// NewMetrics creates the loader metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rowsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partsupport_loader",
			Name:      "rows_processed_total",
			Help:      "Total records written",
		}, []string{"collection"}),

		rowsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partsupport_loader",
			Name:      "rows_failed_total",
			Help:      "Total records not written",
		}, []string{"collection", "reason"}),

		batchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partsupport_loader",
			Name:      "batches_total",
			Help:      "Total batches processed",
		}, []string{"collection"}),

		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "partsupport_loader",
			Name:      "batch_duration_seconds",
			Help:      "Embed plus write duration per batch",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"collection"}),
	}

	reg.MustRegister(m.rowsProcessed, m.rowsFailed, m.batchesTotal, m.batchDuration)
	return m
}
