package app

import (
	"context"
	"fmt"

	accountshandler "shubakar/internal/accounts/handler"
	accountsrepo "shubakar/internal/accounts/repository"
	accountsservice "shubakar/internal/accounts/service"
	accountsvalidator "shubakar/internal/accounts/validator"
	bookingshandler "shubakar/internal/bookings/handler"
	bookingsrepo "shubakar/internal/bookings/repository"
	bookingsservice "shubakar/internal/bookings/service"
	bookingsvalidator "shubakar/internal/bookings/validator"
	budgethandler "shubakar/internal/budget/handler"
	budgetservice "shubakar/internal/budget/service"
	chathandler "shubakar/internal/chat/handler"
	"shubakar/internal/chat/relay"
	chatrepo "shubakar/internal/chat/repository"
	chatservice "shubakar/internal/chat/service"
	chatvalidator "shubakar/internal/chat/validator"
	eventshandler "shubakar/internal/events/handler"
	eventsrepo "shubakar/internal/events/repository"
	eventsservice "shubakar/internal/events/service"
	eventsvalidator "shubakar/internal/events/validator"
	"shubakar/internal/health"
	"shubakar/internal/notifications"
	paymentshandler "shubakar/internal/payments/handler"
	paymentsservice "shubakar/internal/payments/service"
	timelinehandler "shubakar/internal/timeline/handler"
	timelinerepo "shubakar/internal/timeline/repository"
	timelineservice "shubakar/internal/timeline/service"
	timelinevalidator "shubakar/internal/timeline/validator"
	vendorshandler "shubakar/internal/vendors/handler"
	vendorsrepo "shubakar/internal/vendors/repository"
	vendorsservice "shubakar/internal/vendors/service"
	vendorsvalidator "shubakar/internal/vendors/validator"
	"shubakar/pkg/auth"
	"shubakar/pkg/client"
	"shubakar/pkg/config"
	"shubakar/pkg/contracts"
	"shubakar/pkg/middleware"

	"github.com/prometheus/client_golang/prometheus"
)

// Stores are the repositories every module runs on.
type Stores struct {
	Accounts accountsrepo.AccountRepository
	Vendors  vendorsrepo.VendorRepository
	Bookings bookingsrepo.BookingRepository
	Events   eventsrepo.EventRepository
	Messages chatrepo.MessageRepository
	Timeline timelinerepo.TimelineRepository
}

func NewMongoStores(cfg *config.Config) Stores {
	return Stores{
		Accounts: accountsrepo.NewMongoAccountRepository(cfg),
		Vendors:  vendorsrepo.NewMongoVendorRepository(cfg),
		Bookings: bookingsrepo.NewMongoBookingRepository(cfg),
		Events:   eventsrepo.NewMongoEventRepository(cfg),
		Messages: chatrepo.NewMongoMessageRepository(cfg),
		Timeline: timelinerepo.NewMongoTimelineRepository(cfg),
	}
}

// Messaging is the optional cross-instance plumbing. Zero values mean a
// single instance without Kafka or Redis.
type Messaging struct {
	Publisher notifications.Publisher
	Outbox    chatservice.Outbox
	Broker    relay.Broker
}

type Modules struct {
	Accounts accountsservice.AccountService
	Vendors  vendorsservice.VendorService
	Bookings bookingsservice.BookingService
	Payments paymentsservice.PaymentService
	Events   eventsservice.EventService
	Timeline timelineservice.TimelineService
	Chat     chatservice.ChatService
	Budget   budgetservice.BudgetService

	Guard *middleware.Guard
	Hub   *relay.Hub

	Health   *health.Handler
	Handlers []contracts.Handler
}

// NewModules builds every service and handler on top of stores.
func NewModules(cfg *config.Config, stores Stores, messaging Messaging, registry prometheus.Registerer) (*Modules, error) {
	tokens, err := auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTExpiry, cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}
	publisher := messaging.Publisher
	if publisher == nil {
		publisher = notifications.NoopPublisher{}
	}

	vendorValidator := vendorsvalidator.NewVendorValidator()
	bookingValidator := bookingsvalidator.NewBookingValidator()

	m := &Modules{}
	m.Accounts = accountsservice.NewAccountService(
		stores.Accounts,
		stores.Vendors,
		auth.NewBcryptHasher(cfg.BcryptCost),
		tokens,
		accountsvalidator.NewAccountValidator(),
		vendorValidator,
		cfg,
	)
	m.Guard = middleware.NewGuard(tokens, m.Accounts, cfg.CookieName, cfg.Log)

	m.Vendors = vendorsservice.NewVendorService(stores.Vendors, stores.Accounts, publisher, vendorValidator, cfg)
	m.Events = eventsservice.NewEventService(stores.Events, eventsvalidator.NewEventValidator(), cfg)
	m.Bookings = bookingsservice.NewBookingService(
		stores.Bookings,
		stores.Vendors,
		stores.Accounts,
		stores.Events,
		publisher,
		bookingValidator,
		cfg,
	)
	m.Payments = paymentsservice.NewPaymentService(
		stores.Bookings,
		m.Bookings,
		stores.Accounts,
		stores.Vendors,
		publisher,
		bookingValidator,
		cfg,
	)
	m.Timeline = timelineservice.NewTimelineService(stores.Timeline, timelinevalidator.NewTimelineValidator(), cfg)
	m.Chat = chatservice.NewChatService(
		stores.Messages,
		m.Bookings,
		stores.Accounts,
		messaging.Outbox,
		chatvalidator.NewMessageValidator(),
		cfg,
	)
	m.Budget = budgetservice.NewBudgetService(
		client.NewHttpClientWithTimeout(cfg.BudgetServiceURL, cfg.BudgetServiceTimeout),
		cfg,
	)

	m.Hub = relay.NewHub(messaging.Broker, relay.NewMetrics(registry), cfg.Log)
	session := relay.NewSession(m.Hub, m.Chat, cfg.ChatPingInterval, cfg.Log)

	m.Health = health.NewHandler(healthChecks(cfg), cfg.Log)
	m.Handlers = []contracts.Handler{
		accountshandler.NewAccountHandler(m.Accounts, m.Guard, cfg.CookieName, cfg.CookieSecure, cfg.Log),
		vendorshandler.NewVendorHandler(m.Vendors, m.Guard, cfg.Log),
		bookingshandler.NewBookingHandler(m.Bookings, m.Guard, cfg.Log),
		paymentshandler.NewPaymentHandler(m.Payments, m.Guard, cfg.Log),
		eventshandler.NewEventHandler(m.Events, m.Guard, cfg.Log),
		timelinehandler.NewTimelineHandler(m.Timeline, m.Guard, cfg.Log),
		chathandler.NewChatHandler(m.Chat, session, m.Guard, cfg.Log),
		budgethandler.NewBudgetHandler(m.Budget, m.Guard, cfg.Log),
	}

	cfg.Log.Info("Modules initialized",
		"database", cfg.MongoDatabaseName,
		"chat_broker", messaging.Broker != nil,
		"chat_outbox", messaging.Outbox != nil,
	)
	return m, nil
}

func healthChecks(cfg *config.Config) map[string]health.Check {
	checks := map[string]health.Check{}
	if cfg.Client.Mongo != nil {
		checks["mongo"] = func(ctx context.Context) error {
			return cfg.Client.Mongo.Ping(ctx, nil)
		}
	}
	if cfg.Client.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return cfg.Client.Redis.Ping(ctx).Err()
		}
	}
	return checks
}
