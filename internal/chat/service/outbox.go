package service

import (
	"context"
	"fmt"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/kafka"
	"shubakar/pkg/logger"
	"shubakar/pkg/middleware"
	"shubakar/pkg/model"
)

// KafkaOutbox parks unsaved messages on a topic keyed by booking, so retries
// for one room stay ordered.
type KafkaOutbox struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaOutbox(producer *kafka.Producer, source string) *KafkaOutbox {
	return &KafkaOutbox{producer: producer, source: source}
}

func (o *KafkaOutbox) Enqueue(ctx context.Context, msg *model.Message) error {
	km, err := kafka.NewMessage().
		WithKey(msg.BookingID).
		WithValue(msg).
		WithEventType(kafka.EventChatMessagePending).
		WithSource(o.source).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		Build()
	if err != nil {
		return err
	}
	return o.producer.Publish(ctx, km)
}

// OutboxHandler stores queued messages and hands each stored message to
// deliver. Storage failures are transient so the consumer retries them.
func OutboxHandler(svc ChatService, deliver func(ctx context.Context, view *model.MessageView) error, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, km kafka.Message) error {
		var msg model.Message
		if err := km.DecodeValue(&msg); err != nil {
			return kafka.NewPermanentError("undecodable chat message", err)
		}

		view, err := svc.Persist(ctx, &msg)
		if apperrors.HasCode(err, apperrors.CodeValidation) {
			return kafka.NewPermanentError("invalid chat message", err)
		}
		if err != nil {
			return kafka.NewTransientError(fmt.Sprintf("failed to store message %s", msg.ID), err)
		}

		if err := deliver(ctx, view); err != nil {
			log.Warn("Stored queued message but failed to broadcast it", "id", msg.ID, "booking_id", msg.BookingID, "error", err)
		}
		return nil
	}
}
