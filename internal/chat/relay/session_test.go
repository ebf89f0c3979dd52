package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chaterrors "shubakar/internal/chat/errors"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/logger"
	"shubakar/pkg/model"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	openRoom   = "65f0000000000000000000b1"
	closedRoom = "65f0000000000000000000c1"
	queuedText = "please queue"
	failText   = "please fail"
	panicText  = "please panic"
)

type stubMessenger struct{}

func (stubMessenger) Authorize(ctx context.Context, caller *model.Account, bookingID string) error {
	if bookingID != openRoom {
		return apperrors.Forbidden("this booking does not belong to you")
	}
	return nil
}

func (stubMessenger) Send(ctx context.Context, caller *model.Account, bookingID, content string) (*model.MessageView, error) {
	if bookingID != openRoom {
		return nil, apperrors.Forbidden("this booking does not belong to you")
	}
	view := &model.MessageView{
		Message: &model.Message{ID: "1b4e28ba-2fa1-4d3b-883f-0016d3cca427", BookingID: bookingID, SenderID: caller.ID, Content: content, CreatedAt: time.Now().UTC()},
		Sender:  &model.AccountSummary{ID: caller.ID, Name: caller.Name},
	}
	switch content {
	case queuedText:
		return view, chaterrors.ErrQueued
	case failText:
		return nil, apperrors.Internal("Failed to send message", nil)
	case panicText:
		panic("store exploded")
	}
	return view, nil
}

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	hub := newTestHub(nil)
	session := NewSession(hub, stubMessenger{}, time.Second, logger.Nop())
	upgrader := websocket.Upgrader{}
	account := &model.Account{ID: "65f000000000000000000001", Name: "Alice", Role: model.RoleCustomer}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		session.Serve(r.Context(), conn, account)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	frame, err := encode(event, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func next(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var f Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestSession_JoinAndSend(t *testing.T) {
	conn := dial(t)

	send(t, conn, EventJoinRoom, JoinRoom{BookingID: openRoom})
	f := next(t, conn)
	require.Equal(t, EventJoined, f.Event)

	send(t, conn, EventSendMessage, SendMessage{BookingID: openRoom, Content: "hello", ClientRef: "c1"})

	// The sender is in the room, so it gets the broadcast and the ack.
	got := map[string]Frame{}
	for i := 0; i < 2; i++ {
		f := next(t, conn)
		got[f.Event] = f
	}
	require.Contains(t, got, EventReceiveMessage)
	require.Contains(t, got, EventMessageAck)

	var msg ReceivedMessage
	require.NoError(t, json.Unmarshal(got[EventReceiveMessage].Data, &msg))
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, "Alice", msg.Sender.Name)

	var ack MessageAck
	require.NoError(t, json.Unmarshal(got[EventMessageAck].Data, &ack))
	assert.Equal(t, msg.ID, ack.ID)
	assert.Equal(t, "c1", ack.ClientRef)
	assert.False(t, ack.Queued)
}

func TestSession_JoinRefused(t *testing.T) {
	conn := dial(t)

	send(t, conn, EventJoinRoom, JoinRoom{BookingID: closedRoom})
	f := next(t, conn)
	require.Equal(t, EventError, f.Event)

	var e MessageError
	require.NoError(t, json.Unmarshal(f.Data, &e))
	assert.Equal(t, apperrors.CodeForbidden, e.Code)
	assert.Equal(t, closedRoom, e.BookingID)
}

func TestSession_SendOutcomes(t *testing.T) {
	conn := dial(t)

	send(t, conn, EventSendMessage, SendMessage{BookingID: openRoom, Content: queuedText})
	f := next(t, conn)
	require.Equal(t, EventMessageAck, f.Event)
	var ack MessageAck
	require.NoError(t, json.Unmarshal(f.Data, &ack))
	assert.True(t, ack.Queued)

	send(t, conn, EventSendMessage, SendMessage{BookingID: openRoom, Content: failText, ClientRef: "c9"})
	f = next(t, conn)
	require.Equal(t, EventMessageError, f.Event)
	var e MessageError
	require.NoError(t, json.Unmarshal(f.Data, &e))
	assert.Equal(t, "Internal server error", e.Message)
	assert.Equal(t, "c9", e.ClientRef)

	send(t, conn, EventSendMessage, SendMessage{BookingID: closedRoom, Content: "hi"})
	f = next(t, conn)
	require.Equal(t, EventMessageError, f.Event)
}

func TestSession_BadFrames(t *testing.T) {
	conn := dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.Equal(t, EventError, next(t, conn).Event)

	send(t, conn, "dance", nil)
	assert.Equal(t, EventError, next(t, conn).Event)

	send(t, conn, EventJoinRoom, JoinRoom{})
	assert.Equal(t, EventError, next(t, conn).Event)
}

func TestSession_PanicFailsOnlyTheFrame(t *testing.T) {
	conn := dial(t)

	send(t, conn, EventSendMessage, SendMessage{BookingID: openRoom, Content: panicText})
	f := next(t, conn)
	require.Equal(t, EventError, f.Event)
	var e MessageError
	require.NoError(t, json.Unmarshal(f.Data, &e))
	assert.Equal(t, apperrors.CodeInternal, e.Code)
	assert.NotContains(t, e.Message, "exploded")

	// The connection survives and keeps serving.
	send(t, conn, EventJoinRoom, JoinRoom{BookingID: openRoom})
	assert.Equal(t, EventJoined, next(t, conn).Event)
}
