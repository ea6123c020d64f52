package buffer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OpInsert = "insert"
	OpRemove = "remove"
)

// Metrics collects buffer activity. A nil *Metrics records nothing.
type Metrics struct {
	Inserted   *prometheus.CounterVec
	Removed    *prometheus.CounterVec
	Failures   *prometheus.CounterVec
	Occupancy  *prometheus.GaugeVec
	PermitWait *prometheus.HistogramVec
}

// NewMetrics creates buffer metrics and registers them with registry.
// A nil registry creates unregistered collectors.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Inserted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boundedbuf_items_inserted_total",
				Help: "Total number of items inserted into the buffer",
			},
			[]string{"buffer"},
		),
		Removed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boundedbuf_items_removed_total",
				Help: "Total number of items removed from the buffer",
			},
			[]string{"buffer"},
		),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boundedbuf_operation_failures_total",
				Help: "Total number of inserts on a full buffer and removes on an empty buffer",
			},
			[]string{"buffer", "operation"},
		),
		Occupancy: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "boundedbuf_occupancy",
				Help: "Current number of items held by the buffer",
			},
			[]string{"buffer"},
		),
		PermitWait: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "boundedbuf_permit_wait_seconds",
				Help:    "Time spent waiting for a free or filled slot permit",
				Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"buffer", "operation"},
		),
	}
}

func (m *Metrics) recordSuccess(buffer string, operation string) {
	if m == nil {
		return
	}
	if operation == OpInsert {
		m.Inserted.WithLabelValues(buffer).Inc()
	} else {
		m.Removed.WithLabelValues(buffer).Inc()
	}
}

// setOccupancy must be called with the buffer lock held so gauge updates follow mutation order.
func (m *Metrics) setOccupancy(buffer string, occupancy int) {
	if m == nil {
		return
	}
	m.Occupancy.WithLabelValues(buffer).Set(float64(occupancy))
}

func (m *Metrics) recordFailure(buffer string, operation string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(buffer, operation).Inc()
}

func (m *Metrics) observeWait(buffer string, operation string, waited time.Duration) {
	if m == nil {
		return
	}
	m.PermitWait.WithLabelValues(buffer, operation).Observe(waited.Seconds())
}
