package kafka_middleware

import (
	"context"
	"time"

	"shubakar/pkg/kafka"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

type Metrics struct {
	published *prometheus.CounterVec
	consumed  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_messages_published_total",
			Help: "Messages published by topic, event type and result.",
		}, []string{"topic", "event_type", "result"}),
		consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Messages consumed by topic, event type and result.",
		}, []string{"topic", "event_type", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kafka_operation_duration_seconds",
			Help:    "Publish and consume latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic", "operation"}),
	}
	reg.MustRegister(m.published, m.consumed, m.duration)
	return m
}

func (m *Metrics) Producer() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.duration.WithLabelValues(msg.Topic, "publish").Observe(time.Since(start).Seconds())
		m.published.WithLabelValues(msg.Topic, msg.GetEventType(), result(err)).Inc()
		return err
	}
}

func (m *Metrics) Consumer() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.duration.WithLabelValues(msg.Topic, "consume").Observe(time.Since(start).Seconds())
		m.consumed.WithLabelValues(msg.Topic, msg.GetEventType(), result(err)).Inc()
		return err
	}
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}
