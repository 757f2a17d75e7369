package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Counters
	licensesActivatedTotal prometheus.Counter
	sessionsStartedTotal   prometheus.Counter
	sessionsEndedTotal     prometheus.Counter
	listenersJoinedTotal   prometheus.Counter
	webhookDeliveriesTotal *prometheus.CounterVec

	// Gauges
	sessionsActive prometheus.Gauge

	// Histograms
	sessionDuration         prometheus.Histogram
	webhookDeliveryDuration prometheus.Histogram
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		licensesActivatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "airlink_licenses_activated_total",
			Help: "Total number of license activations",
		}),

		sessionsStartedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "airlink_sessions_started_total",
			Help: "Total number of guide sessions started",
		}),

		sessionsEndedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "airlink_sessions_ended_total",
			Help: "Total number of guide sessions ended",
		}),

		listenersJoinedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "airlink_listeners_joined_total",
			Help: "Total number of listeners joined via PIN",
		}),

		webhookDeliveriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "airlink_webhook_deliveries_total",
			Help: "Webhook delivery attempts by outcome",
		}, []string{"status"}),

		sessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "airlink_sessions_active",
			Help: "Number of currently active sessions",
		}),

		sessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "airlink_session_duration_seconds",
			Help:    "Duration of completed sessions",
			Buckets: prometheus.ExponentialBuckets(60, 2, 10),
		}),

		webhookDeliveryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "airlink_webhook_delivery_duration_seconds",
			Help:    "Duration of webhook delivery attempts",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}),
	}
}

func (p *PrometheusCollector) RecordLicenseActivated() {
	p.licensesActivatedTotal.Inc()
}

func (p *PrometheusCollector) RecordSessionStarted() {
	p.sessionsStartedTotal.Inc()
}

func (p *PrometheusCollector) RecordSessionEnded(duration time.Duration) {
	p.sessionsEndedTotal.Inc()
	p.sessionDuration.Observe(duration.Seconds())
}

func (p *PrometheusCollector) RecordListenerJoined() {
	p.listenersJoinedTotal.Inc()
}

func (p *PrometheusCollector) SetActiveSessions(n float64) {
	p.sessionsActive.Set(n)
}

func (p *PrometheusCollector) RecordWebhookDelivery(status string, duration time.Duration) {
	p.webhookDeliveriesTotal.WithLabelValues(status).Inc()
	p.webhookDeliveryDuration.Observe(duration.Seconds())
}
