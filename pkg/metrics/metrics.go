package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records counters for order lifecycle activity.
type OrderMetrics struct {
	transitions *prometheus.CounterVec
	snapshots   prometheus.Counter
	lockWaits   *prometheus.HistogramVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions",
		Help: "Order status transitions by target status.",
	}, []string{"status"})
	snapshots := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vendor_performance_snapshots",
		Help: "Vendor performance snapshots written on order completion.",
	})
	lockWaits := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_lock_hold_seconds",
		Help:    "Time order writes spend holding the per-order lock.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(transitions, snapshots, lockWaits)
	return &OrderMetrics{
		transitions: transitions,
		snapshots:   snapshots,
		lockWaits:   lockWaits,
	}
}

// IncTransition increments the counter for transitions into status.
func (m *OrderMetrics) IncTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncSnapshot increments the snapshot counter.
func (m *OrderMetrics) IncSnapshot() {
	if m == nil || m.snapshots == nil {
		return
	}
	m.snapshots.Inc()
}

// ObserveLockHold records how long the named operation held the order lock.
func (m *OrderMetrics) ObserveLockHold(operation string, duration time.Duration) {
	if m == nil || m.lockWaits == nil {
		return
	}
	m.lockWaits.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// PublisherMetrics records the outbox publisher's activity.
type PublisherMetrics struct {
	published *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

// NewPublisherMetrics registers the publisher metrics on the provided registerer.
func NewPublisherMetrics(reg prometheus.Registerer) *PublisherMetrics {
	if reg == nil {
		return &PublisherMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published",
		Help: "Outbox events successfully published by event type.",
	}, []string{"event_type"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_failures",
		Help: "Outbox publish attempts that failed by event type.",
	}, []string{"event_type"})
	reg.MustRegister(published, failures)
	return &PublisherMetrics{published: published, failures: failures}
}

// IncPublished increments the published counter for the event type.
func (m *PublisherMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailure increments the failure counter for the event type.
func (m *PublisherMetrics) IncFailure(eventType string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
