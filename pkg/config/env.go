package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
	EnvLogFile   = "LOG_FILE"

	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvCookieName   = "COOKIE_NAME"
	EnvCookieSecure = "COOKIE_SECURE"
	EnvBcryptCost   = "BCRYPT_COST"

	EnvPaymentDelay = "PAYMENT_DELAY"

	EnvBudgetServiceURL     = "BUDGET_SERVICE_URL"
	EnvBudgetServiceTimeout = "BUDGET_SERVICE_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvDomainEventsTopic = "KAFKA_DOMAIN_EVENTS_TOPIC"
	EnvChatOutboxTopic   = "KAFKA_CHAT_OUTBOX_TOPIC"
	EnvChatOutboxGroup   = "KAFKA_CHAT_OUTBOX_GROUP"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvChatPingInterval = "CHAT_PING_INTERVAL"
)
