package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(outfitsGeneratedTotal, chatExchangesTotal, inputRejectionsTotal, externalFailuresTotal)
}

var (
	outfitsGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "outfits_generated_total",
			Help: "Outfit records added to wardrobes.",
		},
	)

	chatExchangesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_exchanges_total",
			Help: "Completed user/advisor exchanges.",
		},
	)

	inputRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "input_rejections_total",
			Help: "Requests rejected for empty input, labeled by kind.",
		},
		[]string{"kind"}, // 'outfit', 'chat'
	)

	externalFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_failures_total",
			Help: "Failed generative API calls, labeled by service.",
		},
		[]string{"service"},
	)
)

func IncOutfitGenerated()          { outfitsGeneratedTotal.Inc() }
func IncChatExchange()             { chatExchangesTotal.Inc() }
func IncInputRejected(kind string) { inputRejectionsTotal.WithLabelValues(norm(kind)).Inc() }

func IncExternalFailure(service string) {
	externalFailuresTotal.WithLabelValues(norm(service)).Inc()
}
