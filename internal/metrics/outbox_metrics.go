package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics описывает публикацию transactional outbox.
type OutboxMetrics struct {
	attempts  *prometheus.CounterVec
	pending   prometheus.Gauge
	oldestAge prometheus.Gauge
}

// NewOutboxMetrics регистрирует метрики outbox в registerer (nil — DefaultRegisterer).
func NewOutboxMetrics(registerer prometheus.Registerer) *OutboxMetrics {
	return &OutboxMetrics{
		attempts: register(registerer, "outbox_publish_attempts_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_publish_attempts_total",
			Help:      "Total number of outbox publish attempts grouped by result.",
		}, []string{"result"})),
		pending: register(registerer, "outbox_pending_records", prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbox_pending_records",
			Help:      "Current number of pending records in transactional outbox.",
		})),
		oldestAge: register(registerer, "outbox_oldest_pending_age_seconds", prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbox_oldest_pending_age_seconds",
			Help:      "Age in seconds of the oldest pending outbox record.",
		})),
	}
}

// ObservePublish учитывает попытку публикации с результатом result.
func (m *OutboxMetrics) ObservePublish(result string) {
	m.attempts.WithLabelValues(result).Inc()
}

// SetBacklog обновляет размер и возраст backlog.
func (m *OutboxMetrics) SetBacklog(pending int, oldestAge time.Duration) {
	m.pending.Set(float64(pending))
	m.oldestAge.Set(oldestAge.Seconds())
}
