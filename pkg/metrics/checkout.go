package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout outcomes and order totals.
type CheckoutMetrics struct {
	duration *prometheus.HistogramVec
	orders   prometheus.Counter
	failures *prometheus.CounterVec
	lowStock prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders committed successfully.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkout attempts rejected, by reason.",
	}, []string{"reason"})
	lowStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_signals_total",
		Help: "Products that crossed the low-stock threshold during checkout.",
	})
	reg.MustRegister(duration, orders, failures, lowStock)
	return &CheckoutMetrics{
		duration: duration,
		orders:   orders,
		failures: failures,
		lowStock: lowStock,
	}
}

// ObserveDuration records how long a checkout attempt took.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncOrderCreated increments the committed-orders counter.
func (c *CheckoutMetrics) IncOrderCreated() {
	if c == nil || c.orders == nil {
		return
	}
	c.orders.Inc()
}

// IncFailure increments the failure counter for the named reason.
func (c *CheckoutMetrics) IncFailure(reason string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncLowStockSignal counts a product dropping to or below its threshold.
func (c *CheckoutMetrics) IncLowStockSignal() {
	if c == nil || c.lowStock == nil {
		return
	}
	c.lowStock.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
