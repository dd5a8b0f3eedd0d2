package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(updatesTotal)
}

var updatesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bot_updates_total",
		Help: "Inbound Telegram updates, labeled by kind (command/callback/photo/text).",
	},
	[]string{"kind"},
)

func IncUpdate(kind string) {
	updatesTotal.WithLabelValues(norm(kind)).Inc()
}
