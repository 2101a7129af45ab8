package gateway

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Resync reasons.
const (
	resyncGap       = "gap"
	resyncDropped   = "dropped"
	resyncRequested = "requested"
)

// Metrics holds the gateway collectors. A nil *Metrics records nothing.
type Metrics struct {
	connections *prometheus.GaugeVec
	forwarded   prometheus.Counter
	resyncs     *prometheus.CounterVec
	commands    *prometheus.CounterVec
	consumed    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gateway",
			Name:      "connections",
			Help:      "Open websocket connections, by whether they are bound to a team.",
		}, []string{"team"}),
		forwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "events_forwarded_total",
			Help:      "Draft events written to websocket clients.",
		}),
		resyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "resyncs_total",
			Help:      "Snapshots resent to a connected client.",
		}, []string{"reason"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "commands_total",
			Help:      "Client commands handled.",
		}, []string{"command", "ok"}),
		consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "bus_events_total",
			Help:      "Events read from JetStream.",
		}, []string{"event_type"}),
	}

	reg.MustRegister(m.connections, m.forwarded, m.resyncs, m.commands, m.consumed)
	return m
}

func (m *Metrics) connectionOpened(team bool) {
	if m == nil {
		return
	}
	m.connections.WithLabelValues(strconv.FormatBool(team)).Inc()
}

func (m *Metrics) connectionClosed(team bool) {
	if m == nil {
		return
	}
	m.connections.WithLabelValues(strconv.FormatBool(team)).Dec()
}

func (m *Metrics) eventForwarded() {
	if m == nil {
		return
	}
	m.forwarded.Inc()
}

func (m *Metrics) resync(reason string) {
	if m == nil {
		return
	}
	m.resyncs.WithLabelValues(reason).Inc()
}

func (m *Metrics) command(cmd CommandType, ok bool) {
	if m == nil {
		return
	}
	switch cmd {
	case CommandMakePick, CommandSetAutopick, CommandSync:
	default:
		cmd = "unknown"
	}
	m.commands.WithLabelValues(string(cmd), strconv.FormatBool(ok)).Inc()
}

func (m *Metrics) busEvent(eventType string) {
	if m == nil {
		return
	}
	m.consumed.WithLabelValues(eventType).Inc()
}
