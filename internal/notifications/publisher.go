package notifications

import (
	"context"
	"shubakar/pkg/kafka"
	"shubakar/pkg/logger"
	"shubakar/pkg/middleware"
	"time"
)

// Publisher emits domain events. Delivery is best effort: callers log a
// failed publish and carry on, the database write has already happened.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

type KafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, source string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	msg, err := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	return nil
}

type BookingCreated struct {
	BookingID  string    `json:"bookingId"`
	CustomerID string    `json:"customerId"`
	VendorID   string    `json:"vendorId"`
	Date       time.Time `json:"date"`
	Price      float64   `json:"price"`
}

type BookingStatusChanged struct {
	BookingID string `json:"bookingId"`
	From      string `json:"from"`
	To        string `json:"to"`
	ActorID   string `json:"actorId"`
}

type PaymentCompleted struct {
	BookingID     string    `json:"bookingId"`
	TransactionID string    `json:"transactionId"`
	Amount        float64   `json:"amount"`
	PaidAt        time.Time `json:"paidAt"`
}

type VendorModerated struct {
	ProfileID    string `json:"profileId"`
	AccountID    string `json:"accountId"`
	Approved     bool   `json:"approved"`
	VendorStatus string `json:"vendorStatus"`
}
