// Package metrics holds the booking engine's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "appointer"

type Metrics struct {
	Created     *prometheus.CounterVec
	Rejected    *prometheus.CounterVec
	Cancelled   prometheus.Counter
	Rescheduled prometheus.Counter
	Retries     prometheus.Counter
	SlotLatency prometheus.Histogram
}

// New registers the collectors on reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Created: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_created_total",
			Help:      "Bookings confirmed, by resource kind.",
		}, []string{"kind"}),
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_rejected_total",
			Help:      "Booking writes refused by the conflict check, by reason.",
		}, []string{"reason"}),
		Cancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_cancelled_total",
			Help:      "Bookings moved to cancelled.",
		}),
		Rescheduled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_rescheduled_total",
			Help:      "Bookings moved to a new date, time or resource.",
		}),
		Retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_write_retries_total",
			Help:      "Ledger writes retried after a transient storage failure.",
		}),
		SlotLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "slot_generation_seconds",
			Help:      "Time spent answering a free slot query.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}
}

func (m *Metrics) ObserveSlots(start time.Time) {
	m.SlotLatency.Observe(time.Since(start).Seconds())
}
