package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_events_published_total",
			Help: "Order events published to the broker stream.",
		},
		[]string{"type", "result"},
	)

	EventsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_events_consumed_total",
			Help: "Order events read from the broker stream.",
		},
		[]string{"type", "result"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_notifications_total",
			Help: "Notification emails attempted.",
		},
		[]string{"type", "result"},
	)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_registrations_total",
			Help: "Registration attempts.",
		},
		[]string{"result"},
	)

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_logins_total",
			Help: "Login attempts.",
		},
		[]string{"result"},
	)
)

// MustRegister registers all collectors with the default registry. Call once
// per process; tests skip it so parallel packages do not collide.
func MustRegister() {
	prometheus.MustRegister(
		EventsPublishedTotal,
		EventsConsumedTotal,
		NotificationsTotal,
		RegistrationsTotal,
		LoginsTotal,
	)
}
