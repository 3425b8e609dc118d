package metrics

import "github.com/prometheus/client_golang/prometheus"

// Answer pipeline Prometheus metrics.
var (
	// RagQueriesTotal counts pipeline runs by terminal outcome:
	// answered, no_results, generation_fallback, fatal.
	RagQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "rag_queries_total",
			Help:      "Total RAG queries by outcome",
		},
		[]string{"outcome"},
	)

	RetrievalHits = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ragdex",
			Name:      "retrieval_hits",
			Help:      "Number of hits returned per retrieval",
			Buckets:   []float64{0, 1, 2, 4, 6, 10, 20, 50},
		},
	)

	RetrievalFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "retrieval_failures_total",
			Help:      "Retrieval failures degraded to an empty hit list",
		},
		[]string{"stage"}, // embed, filter, reconnect, search
	)

	VerificationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "verification_failures_total",
			Help:      "Answers with numeric claims not found in the evidence",
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(RagQueriesTotal)
	prometheus.MustRegister(RetrievalHits)
	prometheus.MustRegister(RetrievalFailuresTotal)
	prometheus.MustRegister(VerificationFailuresTotal)
	pipelineMetricsRegistered = true
}
