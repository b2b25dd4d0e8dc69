package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/meetsignal/internal/core"
)

const namespace = "meetsignal"

// Stats is the live state sampled at scrape time.
type Stats interface {
	RoomCount() int
	ConnectionCount() int
}

// Metrics collects signaling counters. It implements core.Observer.
type Metrics struct {
	registry *prometheus.Registry
	commands *prometheus.CounterVec
	rejected prometheus.Counter
	dropped  *prometheus.CounterVec
}

var _ core.Observer = (*Metrics)(nil)

// New builds a registry with process/go collectors and the signaling counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Signaling commands handled, by type.",
		}, []string{"type"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "joins_rejected_total",
			Help:      "Joins rejected because the room was full.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Outbound events dropped because the target was gone or slow, by type.",
		}, []string{"type"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.commands,
		m.rejected,
		m.dropped,
	)
	return m
}

// Track exposes room and connection gauges read from s.
func (m *Metrics) Track(s Stats) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Rooms currently held in memory.",
		}, func() float64 { return float64(s.RoomCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Live signaling connections.",
		}, func() float64 { return float64(s.ConnectionCount()) }),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CommandHandled(kind core.CommandKind) {
	m.commands.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) JoinRejected() {
	m.rejected.Inc()
}

func (m *Metrics) EventDropped(kind core.EventKind) {
	m.dropped.WithLabelValues(kind.String()).Inc()
}
