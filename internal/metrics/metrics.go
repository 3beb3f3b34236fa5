package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "candleshop",
		Name:      "orders_placed_total",
		Help:      "Total number of successfully placed orders.",
	})

	OrderRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "candleshop",
		Name:      "order_rejections_total",
		Help:      "Orders rejected during validation, by reason.",
	}, []string{"reason"})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "candleshop",
		Name:      "emails_sent_total",
		Help:      "Emails handed to the SMTP server, by kind.",
	}, []string{"kind"})

	EmailFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "candleshop",
		Name:      "email_failures_total",
		Help:      "Email deliveries that failed, by kind.",
	}, []string{"kind"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
