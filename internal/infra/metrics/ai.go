package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiCallsLatencyMs,
		aiPromptTokens,
	)
}

var (
	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 32000, 64000},
		},
		[]string{"provider", "kind", "success"},
	)

	aiPromptTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_prompt_tokens",
			Help: "Sum of counted prompt tokens sent to chat completions per provider.",
		},
		[]string{"provider"},
	)
)

// ObserveAICall records one external call; kind is "image" or "chat".
func ObserveAICall(provider, kind string, elapsed time.Duration, success bool) {
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(kind), strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}

func AddPromptTokens(provider string, n int) {
	aiPromptTokens.WithLabelValues(norm(provider)).Add(float64(n))
}
