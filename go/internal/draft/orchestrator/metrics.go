package orchestrator

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics receives engine counters. Calls are made from coordinator loops
// and must not block.
type Metrics interface {
	PickCommitted(auto bool)
	PickRejected(reason string)
	AutopickSource(source string)
	Transition(name string)
	StaleTimeout()
	Resync(halted bool)
	ActiveDrafts(n int)
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

func (NoOpMetrics) PickCommitted(bool)    {}
func (NoOpMetrics) PickRejected(string)   {}
func (NoOpMetrics) AutopickSource(string) {}
func (NoOpMetrics) Transition(string)     {}
func (NoOpMetrics) StaleTimeout()         {}
func (NoOpMetrics) Resync(bool)           {}
func (NoOpMetrics) ActiveDrafts(int)      {}

// PrometheusMetrics implements Metrics with client_golang collectors.
type PrometheusMetrics struct {
	picks         *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	autopicks     *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	staleTimeouts prometheus.Counter
	resyncs       *prometheus.CounterVec
	activeDrafts  prometheus.Gauge
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		picks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "draft",
			Name:      "picks_committed_total",
			Help:      "Picks committed, by whether they were automatic.",
		}, []string{"auto"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "draft",
			Name:      "picks_rejected_total",
			Help:      "Pick submissions rejected by validation.",
		}, []string{"reason"}),
		autopicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "draft",
			Name:      "autopicks_total",
			Help:      "Autopicks by where the player came from.",
		}, []string{"source"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "draft",
			Name:      "transitions_total",
			Help:      "Committed draft transitions.",
		}, []string{"transition"}),
		staleTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "draft",
			Name:      "stale_timeouts_total",
			Help:      "Timer fires discarded because the pick had already moved on.",
		}),
		resyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "draft",
			Name:      "resyncs_total",
			Help:      "Invariant violations followed by a reload from the store.",
		}, []string{"halted"}),
		activeDrafts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "draft",
			Name:      "active_drafts",
			Help:      "Drafts loaded in this process.",
		}),
	}

	reg.MustRegister(
		m.picks,
		m.rejections,
		m.autopicks,
		m.transitions,
		m.staleTimeouts,
		m.resyncs,
		m.activeDrafts,
	)
	return m
}

func (m *PrometheusMetrics) PickCommitted(auto bool) {
	m.picks.WithLabelValues(strconv.FormatBool(auto)).Inc()
}

func (m *PrometheusMetrics) PickRejected(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}

func (m *PrometheusMetrics) AutopickSource(source string) {
	m.autopicks.WithLabelValues(source).Inc()
}

func (m *PrometheusMetrics) Transition(name string) {
	m.transitions.WithLabelValues(name).Inc()
}

func (m *PrometheusMetrics) StaleTimeout() {
	m.staleTimeouts.Inc()
}

func (m *PrometheusMetrics) Resync(halted bool) {
	m.resyncs.WithLabelValues(strconv.FormatBool(halted)).Inc()
}

func (m *PrometheusMetrics) ActiveDrafts(n int) {
	m.activeDrafts.Set(float64(n))
}
