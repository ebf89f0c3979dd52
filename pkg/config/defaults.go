package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "shubakar"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "5000"

	DefaultJWTExpiry  = 30 * 24 * time.Hour
	DefaultJWTIssuer  = "shubakar"
	DefaultCookieName = "jwt"
	DefaultBcryptCost = 12
	MinJWTSecretLen   = 16

	DefaultPaymentDelay = 1500 * time.Millisecond

	DefaultBudgetServiceURL     = "http://localhost:5001"
	DefaultBudgetServiceTimeout = 10 * time.Second

	DefaultRedisDB = 0

	DefaultDomainEventsTopic = "shubakar.domain-events"
	DefaultChatOutboxTopic   = "shubakar.chat-outbox"
	DefaultChatOutboxGroup   = "shubakar-chat-outbox"

	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultChatPingInterval = 30 * time.Second
	DefaultChatMaxMessage   = 4 * 1024

	DefaultPaginationLimit = 100
)
