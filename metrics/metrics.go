// Package metrics exports binder Call State transitions to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/reactor/binder"
)

// Invocation outcomes.
const (
	OutcomeSucceeded  = "succeeded"
	OutcomeFailed     = "failed"
	OutcomeUnresolved = "unresolved" // failed before the operation was called
	OutcomeSuperseded = "superseded"
)

// Collector holds the reactor metric families.
type Collector struct {
	invocations *prometheus.CounterVec
	inFlight    *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates the metric families and registers them with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reactor_invocations_total",
			Help: "Settled invocations by method and outcome.",
		}, []string{"method", "outcome"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reactor_in_flight",
			Help: "Invocations currently pending.",
		}, []string{"method"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reactor_invocation_seconds",
			Help:    "Time from Pending to settlement.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	for _, col := range []prometheus.Collector{c.invocations, c.inFlight, c.latency} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Observe subscribes c to b and returns the unsubscribe function.
func Observe[A, R any](c *Collector, b *binder.Binder[A, R]) func() {
	method := b.Name()
	pending := false

	// Deliveries for one binder never overlap, so pending needs no lock.
	return b.Subscribe(func(st binder.State[R]) {
		switch st.Status {
		case binder.StatusPending:
			if pending {
				c.invocations.WithLabelValues(method, OutcomeSuperseded).Inc()
				return
			}
			pending = true
			c.inFlight.WithLabelValues(method).Inc()

		case binder.StatusSucceeded, binder.StatusFailed:
			outcome := OutcomeSucceeded
			if st.Status == binder.StatusFailed {
				outcome = OutcomeFailed
			}
			if !pending {
				// Resolve failures settle without passing through Pending.
				if st.Status == binder.StatusFailed && st.StartedAt.Equal(st.SettledAt) {
					outcome = OutcomeUnresolved
				}
				c.invocations.WithLabelValues(method, outcome).Inc()
				return
			}
			pending = false
			c.inFlight.WithLabelValues(method).Dec()
			c.invocations.WithLabelValues(method, outcome).Inc()
			c.latency.WithLabelValues(method).Observe(st.Duration().Seconds())
		}
	})
}
