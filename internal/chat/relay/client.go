package relay

import (
	"context"
	"encoding/json"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	chaterrors "shubakar/internal/chat/errors"
	"shubakar/pkg/config"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/logger"
	"shubakar/pkg/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	operationWait  = 10 * time.Second
	sendBufferSize = 64
)

// Messenger is the part of the chat service a connection needs.
type Messenger interface {
	Authorize(ctx context.Context, caller *model.Account, bookingID string) error
	Send(ctx context.Context, caller *model.Account, bookingID, content string) (*model.MessageView, error)
}

// Client is one authenticated connection.
type Client struct {
	ID      string
	account *model.Account
	send    chan []byte
	done    chan struct{}
	once    sync.Once
}

func NewClient(account *model.Account) *Client {
	return &Client{
		ID:      uuid.NewString(),
		account: account,
		send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
	}
}

func (c *Client) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}

// Session runs one websocket connection until either side closes it.
type Session struct {
	hub          *Hub
	messenger    Messenger
	pingInterval time.Duration
	log          *logger.Logger
}

func NewSession(hub *Hub, messenger Messenger, pingInterval time.Duration, log *logger.Logger) *Session {
	return &Session{
		hub:          hub,
		messenger:    messenger,
		pingInterval: pingInterval,
		log:          log.Component("chat-session"),
	}
}

// Serve blocks until the connection ends and always closes conn.
func (s *Session) Serve(ctx context.Context, conn *websocket.Conn, account *model.Account) {
	c := NewClient(account)
	s.hub.Register(c)
	s.hub.metrics.connections.Inc()
	defer s.hub.metrics.connections.Dec()

	s.log.Info("Chat client connected", "client_id", c.ID, "account_id", account.ID)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writePump(conn, c)
	}()

	s.readPump(ctx, conn, c)

	s.hub.Leave(c)
	c.Close()
	wg.Wait()
	s.log.Info("Chat client disconnected", "client_id", c.ID, "account_id", account.ID)
}

func (s *Session) readPump(ctx context.Context, conn *websocket.Conn, c *Client) {
	defer conn.Close()

	pongWait := s.pingInterval + writeWait
	conn.SetReadLimit(config.DefaultChatMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("Chat connection closed unexpectedly", "client_id", c.ID, "error", err)
			}
			return
		}
		s.handle(ctx, c, data)
	}
}

func (s *Session) writePump(conn *websocket.Conn, c *Client) {
	ticker := time.NewTicker(s.pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handle runs one inbound frame. A panic fails that frame only, the
// connection stays open.
func (s *Session) handle(ctx context.Context, c *Client, data []byte) {
	ctx, cancel := context.WithTimeout(ctx, operationWait)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Panic while handling chat frame",
				"client_id", c.ID,
				"account_id", c.account.ID,
				"error", r,
				"stack", string(debug.Stack()),
			)
			s.reply(c, EventError, MessageError{Code: apperrors.CodeInternal, Message: "Internal server error"})
		}
	}()

	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.reply(c, EventError, MessageError{Code: apperrors.CodeInvalidInput, Message: "malformed frame"})
		return
	}

	switch frame.Event {
	case EventJoinRoom:
		var req JoinRoom
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.BookingID == "" {
			s.reply(c, EventError, MessageError{Code: apperrors.CodeInvalidInput, Message: "bookingId is required"})
			return
		}
		s.join(ctx, c, req)
	case EventSendMessage:
		var req SendMessage
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.BookingID == "" {
			s.reply(c, EventMessageError, MessageError{Code: apperrors.CodeInvalidInput, Message: "bookingId and content are required"})
			return
		}
		s.sendMessage(ctx, c, req)
	default:
		s.reply(c, EventError, MessageError{Code: apperrors.CodeInvalidInput, Message: "unknown event: " + frame.Event})
	}
}

func (s *Session) join(ctx context.Context, c *Client, req JoinRoom) {
	if err := s.messenger.Authorize(ctx, c.account, req.BookingID); err != nil {
		appErr := apperrors.AsAppError(err)
		s.log.Warn("Chat room join refused", "client_id", c.ID, "account_id", c.account.ID, "room", req.BookingID, "code", appErr.Code)
		s.reply(c, EventError, errorFrame(req.BookingID, "", appErr))
		return
	}

	s.hub.Join(c, req.BookingID)
	s.reply(c, EventJoined, Joined{BookingID: req.BookingID})
}

func (s *Session) sendMessage(ctx context.Context, c *Client, req SendMessage) {
	view, err := s.messenger.Send(ctx, c.account, req.BookingID, req.Content)
	switch {
	case err == nil:
		if err := s.hub.BroadcastMessage(ctx, view); err != nil {
			s.log.Warn("Stored chat message but failed to broadcast it", "id", view.ID, "room", req.BookingID, "error", err)
		}
		s.hub.metrics.messages.WithLabelValues(resultDelivered).Inc()
		s.reply(c, EventMessageAck, MessageAck{ID: view.ID, BookingID: req.BookingID, ClientRef: req.ClientRef})
	case errors.Is(err, chaterrors.ErrQueued):
		s.hub.metrics.messages.WithLabelValues(resultQueued).Inc()
		s.reply(c, EventMessageAck, MessageAck{ID: view.ID, BookingID: req.BookingID, ClientRef: req.ClientRef, Queued: true})
	default:
		s.hub.metrics.messages.WithLabelValues(resultFailed).Inc()
		s.reply(c, EventMessageError, errorFrame(req.BookingID, req.ClientRef, apperrors.AsAppError(err)))
	}
}

func (s *Session) reply(c *Client, event string, data any) {
	frame, err := encode(event, data)
	if err != nil {
		s.log.Error("Failed to encode chat frame", "event", event, "error", err)
		return
	}
	if !c.enqueue(frame) {
		s.log.Warn("Chat client send buffer full, reply dropped", "client_id", c.ID, "event", event)
	}
}

func errorFrame(bookingID, clientRef string, appErr *apperrors.AppError) MessageError {
	message := appErr.Message
	if appErr.Code == apperrors.CodeInternal {
		message = "Internal server error"
	}
	return MessageError{BookingID: bookingID, ClientRef: clientRef, Code: appErr.Code, Message: message}
}
