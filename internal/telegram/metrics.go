package telegram

import "github.com/prometheus/client_golang/prometheus"

var (
	// updatesReceived counts handled updates by interaction kind. Kind has
	// three values, so cardinality stays bounded.
	updatesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of handled Telegram updates.",
		},
		[]string{"kind"},
	)

	// updatesDropped counts updates of kinds the bot does not handle.
	updatesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_updates_dropped_total",
			Help: "Total number of ignored Telegram updates.",
		},
	)

	// handlerFailures counts interactions that ended in a handler error.
	handlerFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_handler_failures_total",
			Help: "Total number of interactions that failed in a handler.",
		},
	)
)

func init() {
	prometheus.MustRegister(updatesReceived, updatesDropped, handlerFailures)
}
