package relay

import (
	"context"
	"sync"

	"shubakar/pkg/logger"
	"shubakar/pkg/model"
)

// Hub tracks which connections joined which booking room on this instance.
// With a broker, broadcasts travel through it and come back via Run, so every
// instance delivers to its own members.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	joined map[*Client]map[string]struct{}

	broker  Broker
	metrics *Metrics
	log     *logger.Logger
}

// NewHub accepts a nil broker for single instance deployments.
func NewHub(broker Broker, metrics *Metrics, log *logger.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		joined:  make(map[*Client]map[string]struct{}),
		broker:  broker,
		metrics: metrics,
		log:     log.Component("chat-hub"),
	}
}

// Run blocks until ctx ends, relaying broker traffic into local rooms.
func (h *Hub) Run(ctx context.Context) error {
	if h.broker == nil {
		<-ctx.Done()
		return nil
	}
	return h.broker.Run(ctx, h.deliver)
}

// Register tracks a connected client before it joins any room.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.joined[c]; !ok {
		h.joined[c] = make(map[string]struct{})
	}
}

func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}

	rooms, ok := h.joined[c]
	if !ok {
		rooms = make(map[string]struct{})
		h.joined[c] = rooms
	}
	rooms[room] = struct{}{}
}

// Leave removes c from every room it joined and forgets it.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.joined[c] {
		members := h.rooms[room]
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.joined, c)
}

func (h *Hub) InRoom(c *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[room][c]
	return ok
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) Broadcast(ctx context.Context, room string, frame []byte) error {
	if h.broker != nil {
		return h.broker.Publish(ctx, room, frame)
	}
	h.deliver(room, frame)
	return nil
}

// BroadcastMessage sends a stored message to its booking room as a
// receive_message frame.
func (h *Hub) BroadcastMessage(ctx context.Context, view *model.MessageView) error {
	frame, err := ReceiveFrame(view)
	if err != nil {
		return err
	}
	return h.Broadcast(ctx, view.BookingID, frame)
}

// deliver never blocks on a member. A member whose buffer is full is
// disconnected.
func (h *Hub) deliver(room string, frame []byte) {
	var slow []*Client

	h.mu.RLock()
	for c := range h.rooms[room] {
		if !c.enqueue(frame) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("Dropping slow chat client", "client_id", c.ID, "account_id", c.account.ID, "room", room)
		h.metrics.dropped.Inc()
		h.Leave(c)
		c.Close()
	}
}

// CloseAll disconnects every local member. Used on server shutdown, which
// does not track hijacked connections.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.joined))
	for c := range h.joined {
		clients = append(clients, c)
	}
	h.rooms = make(map[string]map[*Client]struct{})
	h.joined = make(map[*Client]map[string]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
	h.log.Info("Chat clients disconnected for shutdown", "count", len(clients))
}
