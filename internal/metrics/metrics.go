package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	// ComparisonCount counts pairwise similarity comparisons
	ComparisonCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similarity_comparisons_total",
			Help: "Total number of pairwise similarity comparisons",
		},
		[]string{"language", "level"},
	)

	// ComparisonDuration measures end to end comparison duration
	ComparisonDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "similarity_comparison_duration_seconds",
			Help: "Pairwise comparison duration in seconds",
		},
		[]string{"language"},
	)

	// LayerDuration measures per layer analysis duration
	LayerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "similarity_layer_duration_seconds",
			Help: "Detection layer duration in seconds",
		},
		[]string{"layer"},
	)

	// JudgeCalls counts semantic judge invocations by outcome
	JudgeCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "semantic_judge_calls_total",
			Help: "Total number of semantic judge invocations",
		},
		[]string{"outcome"},
	)
)

// InitPrometheus initializes Prometheus metrics
func InitPrometheus() {
	prometheus.MustRegister(RequestCount)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ComparisonCount)
	prometheus.MustRegister(ComparisonDuration)
	prometheus.MustRegister(LayerDuration)
	prometheus.MustRegister(JudgeCalls)
}
