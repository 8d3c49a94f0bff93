package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gofood_http_requests_total",
		Help: "Total number of HTTP requests by route, method and status.",
	},
		[]string{"route", "method", "status"},
	)

	OrderTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gofood_order_transitions_total",
		Help: "Total number of successful order status transitions by target status.",
	},
		[]string{"status"},
	)

	NotificationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gofood_notification_failures_total",
		Help: "Total number of swallowed notification failures by dispatch step.",
	},
		[]string{"step"},
	)

	EmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gofood_emails_total",
		Help: "Total number of email delivery attempts by result.",
	},
		[]string{"result"},
	)
)
