package socket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	directionReceive = "receive"
	directionSend    = "send"
)

// Metrics exports registry and transfer counters. A nil *Metrics records nothing.
type Metrics struct {
	openSockets    prometheus.Gauge
	accepted       prometheus.Counter
	bytes          *prometheus.CounterVec
	idleTimeouts   *prometheus.CounterVec
	transferErrors *prometheus.CounterVec
	peerClosed     prometheus.Counter
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		openSockets: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sockets",
			Name:      "open_sockets",
			Help:      "Number of handles currently in the registry.",
		}),
		accepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sockets",
			Name:      "accepted_total",
			Help:      "Total number of accepted client connections.",
		}),
		bytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sockets",
			Name:      "transferred_bytes_total",
			Help:      "Total number of bytes moved by Receive and Send.",
		}, []string{"direction"}),
		idleTimeouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sockets",
			Name:      "idle_timeouts_total",
			Help:      "Transfers that stopped early because the peer stalled past the idle timeout.",
		}, []string{"direction"}),
		transferErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sockets",
			Name:      "transfer_errors_total",
			Help:      "Transfers that failed with a hard I/O error.",
		}, []string{"direction"}),
		peerClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sockets",
			Name:      "peer_closed_total",
			Help:      "Receives that observed the peer closing the stream.",
		}),
	}
}

func (m *Metrics) opened() {
	if m != nil {
		m.openSockets.Inc()
	}
}

func (m *Metrics) closed() {
	if m != nil {
		m.openSockets.Dec()
	}
}

func (m *Metrics) acceptedClient() {
	if m != nil {
		m.accepted.Inc()
	}
}

func (m *Metrics) transferred(direction string, n int, result transferResult) {
	if m == nil {
		return
	}
	if n > 0 {
		m.bytes.WithLabelValues(direction).Add(float64(n))
	}
	switch result {
	case resultIdleTimeout:
		m.idleTimeouts.WithLabelValues(direction).Inc()
	case resultPeerClosed:
		m.peerClosed.Inc()
	case resultError:
		m.transferErrors.WithLabelValues(direction).Inc()
	}
}
