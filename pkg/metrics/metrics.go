// Package metrics exposes Prometheus instrumentation for polling and tracking.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tick outcomes used as the "outcome" label.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeTransport = "transport_error"
)

// Manager owns a private registry and every collector registered on it.
// All methods are safe on a nil *Manager.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	ticks          *prometheus.CounterVec
	tickDuration   prometheus.Histogram
	storeErrors    prometheus.Counter
	deliveryErrors prometheus.Counter
	activeSessions prometheus.Gauge
	sessionsEnded  *prometheus.CounterVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithRegistry registers collectors on r instead of a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{namespace: "sstrack"}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)
	m.ticks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "tracking",
		Name:      "ticks_total",
		Help:      "Poll ticks by outcome",
	}, []string{"outcome"})
	m.tickDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "tracking",
		Name:      "tick_duration_seconds",
		Help:      "Time spent in a single poll tick",
		Buckets:   prometheus.DefBuckets,
	})
	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "storage",
		Name:      "errors_total",
		Help:      "Snapshot reads or writes that failed",
	})
	m.deliveryErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "notify",
		Name:      "delivery_errors_total",
		Help:      "Messages the notification sink rejected",
	})
	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "tracking",
		Name:      "active_sessions",
		Help:      "Tracking sessions currently running",
	})
	m.sessionsEnded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "tracking",
		Name:      "sessions_ended_total",
		Help:      "Tracking sessions that ended, by reason",
	}, []string{"reason"})
	return m
}

// Registry returns the registry backing m.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) ObserveTick(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues(outcome).Inc()
	m.tickDuration.Observe(d.Seconds())
}

func (m *Manager) StoreError() {
	if m == nil {
		return
	}
	m.storeErrors.Inc()
}

func (m *Manager) DeliveryError() {
	if m == nil {
		return
	}
	m.deliveryErrors.Inc()
}

func (m *Manager) SessionStarted() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

// SessionEnded records a session leaving the running state. reason is
// "stopped", "replaced", "failed" or "shutdown".
func (m *Manager) SessionEnded(reason string) {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
	m.sessionsEnded.WithLabelValues(reason).Inc()
}
