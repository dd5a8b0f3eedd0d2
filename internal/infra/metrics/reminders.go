package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		remindersSentTotal,
		deliveryFailuresTotal,
		sweepDuration,
	)
}

var (
	remindersSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Reminders delivered, labeled by kind (abandonment/renewal/final).",
		},
		[]string{"kind"},
	)

	deliveryFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_failures_total",
			Help: "Outbound notification failures, labeled by surface.",
		},
		[]string{"surface"},
	)

	sweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reminder_sweep_duration_seconds",
			Help:    "Duration of one full reminder sweep.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func IncReminderSent(kind string) {
	remindersSentTotal.WithLabelValues(norm(kind)).Inc()
}

func IncDeliveryFailure(surface string) {
	deliveryFailuresTotal.WithLabelValues(norm(surface)).Inc()
}

func ObserveSweepDuration(seconds float64) {
	sweepDuration.Observe(seconds)
}
