package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(tgUpdatesTotal, tgDeliveriesTotal) }

var tgUpdatesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "telegram_updates_total",
		Help: "Inbound Telegram updates per kind.",
	},
	[]string{"kind"}, // text|voice|document|command|other
)

var tgDeliveriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "telegram_deliveries_total",
		Help: "Outbound reply deliveries per kind/success.",
	},
	[]string{"kind", "success"},
)

func IncUpdate(kind string) {
	tgUpdatesTotal.WithLabelValues(norm(kind)).Inc()
}

func IncDelivery(kind string, success bool) {
	s := "false"
	if success {
		s = "true"
	}
	tgDeliveriesTotal.WithLabelValues(norm(kind), s).Inc()
}
