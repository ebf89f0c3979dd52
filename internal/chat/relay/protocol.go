package relay

import (
	"encoding/json"
	"time"

	"shubakar/pkg/model"
)

// Client to server events.
const (
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
)

// Server to client events.
const (
	EventJoined         = "joined"
	EventReceiveMessage = "receive_message"
	EventMessageAck     = "message_ack"
	EventMessageError   = "message_error"
	EventError          = "error"
)

// Frame is one websocket text message in either direction.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinRoom struct {
	BookingID string `json:"bookingId"`
}

type SendMessage struct {
	BookingID string `json:"bookingId"`
	Content   string `json:"content"`
	// ClientRef is echoed in the ack so clients can match optimistic sends.
	ClientRef string `json:"clientRef,omitempty"`
}

type Joined struct {
	BookingID string `json:"bookingId"`
}

type ReceivedMessage struct {
	ID        string                `json:"id"`
	BookingID string                `json:"bookingId"`
	Sender    *model.AccountSummary `json:"sender"`
	Content   string                `json:"content"`
	CreatedAt time.Time             `json:"createdAt"`
}

type MessageAck struct {
	ID        string `json:"id"`
	BookingID string `json:"bookingId"`
	ClientRef string `json:"clientRef,omitempty"`
	Queued    bool   `json:"queued,omitempty"`
}

type MessageError struct {
	BookingID string `json:"bookingId,omitempty"`
	ClientRef string `json:"clientRef,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

// ReceiveFrame renders a stored message as the receive_message frame.
func ReceiveFrame(view *model.MessageView) ([]byte, error) {
	return encode(EventReceiveMessage, ReceivedMessage{
		ID:        view.ID,
		BookingID: view.BookingID,
		Sender:    view.Sender,
		Content:   view.Content,
		CreatedAt: view.CreatedAt,
	})
}
