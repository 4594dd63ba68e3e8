// Package metrics exports panel activity as Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sweeney/alarm-panel/internal/httpd"
	"github.com/sweeney/alarm-panel/internal/logic"
)

const namespace = "alarm_panel"

var allStates = []logic.State{logic.StateIdle, logic.StateArmPending, logic.StateActive}

// Metrics implements httpd.Observer and panel.Recorder. Every method runs
// on the control goroutine; scraping happens on the admin server.
type Metrics struct {
	accepted    prometheus.Counter
	closed      prometheus.Counter
	requests    *prometheus.CounterVec
	routeErrors *prometheus.CounterVec
	transitions *prometheus.CounterVec
	state       *prometheus.GaugeVec
	confirmWait prometheus.Histogram

	armingAt *logic.Event
}

// New registers the panel collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		accepted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Connections accepted on the control port.",
		}),
		closed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_closed_total",
			Help:      "Connections closed by the remote end or by idle timeout.",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests received, by matched route.",
		}, []string{"route"}),
		routeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transition_errors_total",
			Help:      "Requests whose transition reported an output error.",
		}, []string{"route"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Alarm state transitions, by event.",
		}, []string{"event"}),
		state: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "1 for the current alarm state, 0 otherwise.",
		}, []string{"state"}),
		confirmWait: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confirm_wait_seconds",
			Help:      "Time between an arm request and the button confirmation.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 8),
		}),
	}
}

func (m *Metrics) Accepted() {
	m.accepted.Inc()
}

func (m *Metrics) Closed() {
	m.closed.Inc()
}

func (m *Metrics) Routed(route httpd.Route, err error) {
	m.requests.WithLabelValues(route.String()).Inc()
	if err != nil {
		m.routeErrors.WithLabelValues(route.String()).Inc()
	}
}

func (m *Metrics) Transition(ev logic.Event) {
	m.transitions.WithLabelValues(string(ev.Type)).Inc()
	switch ev.Type {
	case logic.EventArming:
		e := ev
		m.armingAt = &e
	case logic.EventArmed:
		if m.armingAt != nil {
			m.confirmWait.Observe(ev.Timestamp.Sub(m.armingAt.Timestamp).Seconds())
		}
		m.armingAt = nil
	case logic.EventDisarmed:
		m.armingAt = nil
	}
}

func (m *Metrics) SetState(s logic.State) {
	for _, st := range allStates {
		v := 0.0
		if st == s {
			v = 1
		}
		m.state.WithLabelValues(string(st)).Set(v)
	}
}
