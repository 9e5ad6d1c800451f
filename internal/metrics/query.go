package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Query pipeline metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Processed queries by outcome",
		},
		[]string{"outcome"}, // answered, degraded, rejected, failed
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Vector retrieval duration per collection, including the widened retry",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"collection"},
	)

	RetrievalWidenedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_widened_total",
			Help:      "Filtered searches with no hits that were retried unfiltered",
		},
		[]string{"collection"},
	)

	RenderSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_skipped_records_total",
			Help:      "Records left out of the generation context",
		},
		[]string{"reason"}, // category, missing_field
	)

	GenerationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_total",
			Help:      "Answer generations by outcome",
		},
		[]string{"outcome"}, // success, fallback
	)

	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Chat completion duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		},
	)

	CompletionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_tokens_total",
			Help:      "Chat completion tokens consumed",
		},
		[]string{"model", "type"}, // prompt, completion
	)
)

var queryOnce sync.Once

// RegisterQueryMetrics registers the query pipeline metrics with the default registry. Idempotent.
func RegisterQueryMetrics() {
	queryOnce.Do(func() {
		prometheus.MustRegister(
			QueriesTotal,
			RetrievalDuration,
			RetrievalWidenedTotal,
			RenderSkippedTotal,
			GenerationTotal,
			GenerationDuration,
			CompletionTokensTotal,
		)
	})
}
