package relay

import (
	"context"
	"fmt"
	"strings"

	"shubakar/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const roomChannelPrefix = "shubakar:chat:room:"

// Broker fans room frames out to every API instance, this one included.
type Broker interface {
	Publish(ctx context.Context, room string, frame []byte) error
	// Run delivers frames published by any instance until ctx ends.
	Run(ctx context.Context, deliver func(room string, frame []byte)) error
}

type RedisBroker struct {
	rdb *redis.Client
	log *logger.Logger
	// ready is closed once the pattern subscription is confirmed.
	ready chan struct{}
}

func NewRedisBroker(rdb *redis.Client, log *logger.Logger) *RedisBroker {
	return &RedisBroker{rdb: rdb, log: log.Component("chat-broker"), ready: make(chan struct{})}
}

func (b *RedisBroker) Publish(ctx context.Context, room string, frame []byte) error {
	if err := b.rdb.Publish(ctx, roomChannelPrefix+room, frame).Err(); err != nil {
		return fmt.Errorf("failed to publish to room %s: %w", room, err)
	}
	return nil
}

func (b *RedisBroker) Run(ctx context.Context, deliver func(room string, frame []byte)) error {
	sub := b.rdb.PSubscribe(ctx, roomChannelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to chat rooms: %w", err)
	}
	close(b.ready)
	b.log.Info("Subscribed to chat rooms", "pattern", roomChannelPrefix+"*")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			deliver(strings.TrimPrefix(msg.Channel, roomChannelPrefix), []byte(msg.Payload))
		}
	}
}

// Ready is closed when Run is receiving.
func (b *RedisBroker) Ready() <-chan struct{} {
	return b.ready
}
