package event

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors of the event service. Malformed records are
// dropped before they reach any of these and are deliberately not counted.
type Metrics struct {
	Payloads      prometheus.Counter
	Decoded       *prometheus.CounterVec
	Unknown       prometheus.Counter
	SinkErrors    *prometheus.CounterVec
	Duplicates    prometheus.Counter
	IgnoredEvents prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Payloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "connevents",
			Name:      "payloads_total",
			Help:      "Connection event payloads received.",
		}),
		Decoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connevents",
			Name:      "events_decoded_total",
			Help:      "Decoded connection events by event name.",
		}, []string{"event"}),
		Unknown: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "connevents",
			Name:      "unknown_events_total",
			Help:      "Records whose event code has no message.",
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connevents",
			Name:      "sink_errors_total",
			Help:      "Failed sink deliveries by sink.",
		}, []string{"sink"}),
		Duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "connevents",
			Name:      "duplicate_payloads_total",
			Help:      "Payloads skipped as MQTT redeliveries.",
		}),
		IgnoredEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "connevents",
			Name:      "ignored_messages_total",
			Help:      "Messages skipped for another event name or a missing device id.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Payloads, m.Decoded, m.Unknown, m.SinkErrors, m.Duplicates, m.IgnoredEvents)
	}
	return m
}
