package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics считает оформленные и отклонённые заказы.
type OrderMetrics struct {
	created       prometheus.Counter
	lines         prometheus.Counter
	units         prometheus.Counter
	rejected      *prometheus.CounterVec
	createLatency prometheus.Histogram
}

// NewOrderMetrics регистрирует метрики заказов в registerer (nil — DefaultRegisterer).
func NewOrderMetrics(registerer prometheus.Registerer) *OrderMetrics {
	return &OrderMetrics{
		created: register(registerer, "orders_created_total", prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Total number of orders created.",
		})),
		lines: register(registerer, "order_lines_total", prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_lines_total",
			Help:      "Total number of line items in created orders.",
		})),
		units: register(registerer, "order_units_total", prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_units_total",
			Help:      "Total number of product units taken from stock by created orders.",
		})),
		rejected: register(registerer, "orders_rejected_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Total number of rejected order requests grouped by reason.",
		}, []string{"reason"})),
		createLatency: register(registerer, "order_create_duration_seconds", prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_create_duration_seconds",
			Help:      "Duration of order creation in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		})),
	}
}

// RecordOrderCreated учитывает оформленный заказ.
func (m *OrderMetrics) RecordOrderCreated(lines, units int) {
	m.created.Inc()
	m.lines.Add(float64(lines))
	m.units.Add(float64(units))
}

// RecordOrderRejected учитывает отказ с причиной reason.
func (m *OrderMetrics) RecordOrderRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// ObserveCreateDuration записывает длительность оформления.
func (m *OrderMetrics) ObserveCreateDuration(duration time.Duration) {
	m.createLatency.Observe(duration.Seconds())
}
