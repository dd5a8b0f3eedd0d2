package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		ordersCreatedTotal,
		transactionsTotal,
		revenueCentsTotal,
	)
}

var (
	ordersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders opened, labeled by service type.",
		},
		[]string{"service"},
	)

	transactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_total",
			Help: "Transaction status transitions (processing/completed/rejected).",
		},
		[]string{"status"},
	)

	revenueCentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "revenue_cents_total",
			Help: "Total value of approved payments, in cents.",
		},
	)
)

func IncOrderCreated(service string) {
	ordersCreatedTotal.WithLabelValues(norm(service)).Inc()
}

func IncTransactionStatus(status string) {
	transactionsTotal.WithLabelValues(norm(status)).Inc()
}

func AddRevenue(cents int64) {
	revenueCentsTotal.Add(float64(cents))
}
