package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	StreamClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stockdash",
			Subsystem: "session_stream",
			Name:      "clients",
			Help:      "Connected session stream websockets",
		},
	)

	StreamEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockdash",
			Subsystem: "session_stream",
			Name:      "events_total",
			Help:      "Session events by type and delivery result",
		},
		[]string{"type", "result"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(StreamClients, StreamEvents)
	})
}
