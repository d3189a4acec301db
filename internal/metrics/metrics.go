package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sameoldbox/notify-dispatch/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	NotificationsSent    *prometheus.CounterVec
	NotificationsFailed  *prometheus.CounterVec
	NotificationsSkipped *prometheus.CounterVec
	SendLatency          *prometheus.HistogramVec
}

// New registers all instruments with reg. A custom registry keeps tests
// isolated from prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Channel sends accepted by the provider.",
		}, []string{"channel", "kind"}),

		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Channel sends that failed to build or were rejected by the provider.",
		}, []string{"channel", "kind"}),

		NotificationsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_skipped_total",
			Help: "Channel sends skipped because the recipient had no address for the channel.",
		}, []string{"channel", "kind"}),

		SendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notification_send_seconds",
			Help:    "Provider round-trip latency of successful sends.",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel"}),
	}

	reg.MustRegister(
		m.NotificationsSent,
		m.NotificationsFailed,
		m.NotificationsSkipped,
		m.SendLatency,
	)

	return m
}

// DispatchHooks returns the callbacks expected by service.MetricHooks.
// Keeps the prometheus calls here so the dispatcher stays import-free.
func (m *Metrics) DispatchHooks() (
	onSent func(domain.Channel, domain.Kind, time.Duration),
	onFailed func(domain.Channel, domain.Kind),
	onSkipped func(domain.Channel, domain.Kind),
) {
	onSent = func(ch domain.Channel, kind domain.Kind, latency time.Duration) {
		m.NotificationsSent.WithLabelValues(string(ch), string(kind)).Inc()
		m.SendLatency.WithLabelValues(string(ch)).Observe(latency.Seconds())
	}
	onFailed = func(ch domain.Channel, kind domain.Kind) {
		m.NotificationsFailed.WithLabelValues(string(ch), string(kind)).Inc()
	}
	onSkipped = func(ch domain.Channel, kind domain.Kind) {
		m.NotificationsSkipped.WithLabelValues(string(ch), string(kind)).Inc()
	}
	return
}
