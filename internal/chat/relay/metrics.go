package relay

import "github.com/prometheus/client_golang/prometheus"

const (
	resultDelivered = "delivered"
	resultQueued    = "queued"
	resultFailed    = "failed"
)

type Metrics struct {
	connections prometheus.Gauge
	messages    *prometheus.CounterVec
	dropped     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_connections",
			Help: "Open chat websocket connections.",
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Chat messages sent by result.",
		}, []string{"result"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_slow_clients_dropped_total",
			Help: "Connections closed because their send buffer was full.",
		}),
	}
	reg.MustRegister(m.connections, m.messages, m.dropped)
	return m
}
