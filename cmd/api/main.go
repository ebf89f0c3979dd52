package main

import (
	"context"

	"shubakar/internal/chat/relay"
	chatservice "shubakar/internal/chat/service"
	"shubakar/internal/notifications"
	"shubakar/pkg/app"
	"shubakar/pkg/config"
	"shubakar/pkg/kafka"
	kafka_middleware "shubakar/pkg/kafka/middleware"
	"shubakar/pkg/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const ServiceName = "shubakar-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var kafkaMetrics *kafka_middleware.Metrics
	if cfg.KafkaEnabled() {
		kafkaMetrics = kafka_middleware.NewMetrics(registry)
	}

	serverApp := app.NewApplication(cfg, registry)
	messaging := initMessaging(cfg, kafkaMetrics, serverApp)

	modules, err := app.NewModules(cfg, app.NewMongoStores(cfg), messaging, registry)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize modules", "error", err)
	}

	serverApp.AddWorker("chat-hub", modules.Hub.Run)
	serverApp.OnShutdown(modules.Hub.CloseAll)
	if cfg.KafkaEnabled() {
		initOutboxConsumer(cfg, kafkaMetrics, serverApp, modules)
	}

	cfg.Log.Info("Starting SHUBAKAR API")
	serverApp.SetApp(modules.Health, modules.Handlers...)
	serverApp.Run()
}

// initMessaging connects the optional Kafka producers and Redis room broker.
func initMessaging(cfg *config.Config, metrics *kafka_middleware.Metrics, serverApp *app.Application) app.Messaging {
	var messaging app.Messaging

	if cfg.Client.Redis != nil {
		messaging.Broker = relay.NewRedisBroker(cfg.Client.Redis, cfg.Log)
		cfg.Log.Info("Chat rooms fan out through Redis")
	}

	if !cfg.KafkaEnabled() {
		messaging.Publisher = notifications.NoopPublisher{}
		cfg.Log.Info("Kafka disabled, domain events are not published")
		return messaging
	}

	events, err := kafka.NewProducer(cfg.Kafka, cfg.DomainEventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create domain events producer", "error", err)
	}
	events.Use(metrics.Producer())
	events.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	serverApp.OnShutdown(func() { closeLogged(cfg, "domain events producer", events.Close) })
	messaging.Publisher = notifications.NewKafkaPublisher(events, ServiceName, cfg.Log)

	outbox, err := kafka.NewProducer(cfg.Kafka, cfg.ChatOutboxTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create chat outbox producer", "error", err)
	}
	outbox.Use(metrics.Producer())
	outbox.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	serverApp.OnShutdown(func() { closeLogged(cfg, "chat outbox producer", outbox.Close) })
	messaging.Outbox = chatservice.NewKafkaOutbox(outbox, ServiceName)

	cfg.Log.Info("Kafka enabled", "domain_events_topic", cfg.DomainEventsTopic, "chat_outbox_topic", cfg.ChatOutboxTopic)
	return messaging
}

// initOutboxConsumer stores queued chat messages and broadcasts them once
// stored.
func initOutboxConsumer(cfg *config.Config, metrics *kafka_middleware.Metrics, serverApp *app.Application, modules *app.Modules) {
	deliver := func(ctx context.Context, view *model.MessageView) error {
		return modules.Hub.BroadcastMessage(ctx, view)
	}

	consumer, err := kafka.NewConsumer(
		cfg.Kafka,
		cfg.ChatOutboxTopic,
		cfg.ChatOutboxGroup,
		cfg.ChatOutboxTopic+".dlq",
		chatservice.OutboxHandler(modules.Chat, deliver, cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create chat outbox consumer", "error", err)
	}
	consumer.Use(metrics.Consumer())
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	serverApp.AddWorker("chat-outbox", consumer.Start)
	serverApp.OnShutdown(func() { closeLogged(cfg, "chat outbox consumer", consumer.Close) })
}

func closeLogged(cfg *config.Config, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		cfg.Log.Error("Failed to close", "component", name, "error", err)
	}
}
