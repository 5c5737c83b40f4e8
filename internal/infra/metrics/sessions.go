package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(sessionsActive, sessionsStartedTotal, sessionsEndedTotal)
}

var (
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Number of live in-memory sessions.",
		},
	)

	sessionsStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_started_total",
			Help: "Total number of sessions created.",
		},
	)

	sessionsEndedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_ended_total",
			Help: "Total number of sessions ended, labeled by reason.",
		},
		[]string{"reason"}, // 'expired', 'closed'
	)
)

func IncSessionsStarted() {
	sessionsStartedTotal.Inc()
	sessionsActive.Inc()
}

func AddSessionsEnded(reason string, n int) {
	if n <= 0 {
		return
	}
	sessionsEndedTotal.WithLabelValues(norm(reason)).Add(float64(n))
	sessionsActive.Sub(float64(n))
}
