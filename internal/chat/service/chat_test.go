package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	chaterrors "shubakar/internal/chat/errors"
	"shubakar/internal/chat/validator"
	"shubakar/pkg/config"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/kafka"
	"shubakar/pkg/logger"
	"shubakar/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	roomB = "65f0000000000000000000b1"
	roomC = "65f0000000000000000000c1"
)

var (
	alice = &model.Account{ID: "65f000000000000000000001", Name: "Alice", Email: "alice@test.com", Role: model.RoleCustomer}
	bob   = &model.Account{ID: "65f000000000000000000002", Name: "Bob", Email: "bob@test.com", Role: model.RoleVendor}
	carol = &model.Account{ID: "65f000000000000000000004", Name: "Carol", Role: model.RoleCustomer}
)

type memoryMessages struct {
	mu       sync.Mutex
	messages map[string]*model.Message
	failures int
}

func (m *memoryMessages) Create(ctx context.Context, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("server selection error: no primary")
	}
	if _, ok := m.messages[msg.ID]; ok {
		return chaterrors.ErrDuplicate
	}
	cp := *msg
	m.messages[msg.ID] = &cp
	return nil
}

func (m *memoryMessages) FindByBooking(ctx context.Context, bookingID string) ([]*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Message{}
	for _, msg := range m.messages {
		if msg.BookingID == bookingID {
			cp := *msg
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// roomAccess lets alice and bob into room B and carol into room C.
type roomAccess struct{}

func (roomAccess) GetForParticipant(ctx context.Context, caller *model.Account, id string) (*model.Booking, error) {
	switch {
	case id == roomB && (caller.ID == alice.ID || caller.ID == bob.ID):
		return &model.Booking{ID: roomB}, nil
	case id == roomC && caller.ID == carol.ID:
		return &model.Booking{ID: roomC}, nil
	case id != roomB && id != roomC:
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	return nil, apperrors.Forbidden("this booking does not belong to you")
}

type accountList []*model.Account

func (a accountList) FindByIDs(ctx context.Context, ids []string) ([]*model.Account, error) {
	var out []*model.Account
	for _, acc := range a {
		for _, id := range ids {
			if acc.ID == id {
				out = append(out, acc)
			}
		}
	}
	return out, nil
}

type recordingOutbox struct {
	queued []*model.Message
	err    error
}

func (o *recordingOutbox) Enqueue(ctx context.Context, msg *model.Message) error {
	if o.err != nil {
		return o.err
	}
	o.queued = append(o.queued, msg)
	return nil
}

func newChat(repo *memoryMessages, outbox Outbox) *chatService {
	svc := NewChatService(repo, roomAccess{}, accountList{alice, bob, carol}, outbox,
		validator.NewMessageValidator(), &config.Config{Log: logger.Nop()}).(*chatService)

	// A stepping clock keeps creation order unambiguous.
	clock := time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	return svc
}

func TestHistory_OrderAndRoomIsolation(t *testing.T) {
	repo := &memoryMessages{messages: map[string]*model.Message{}}
	svc := newChat(repo, nil)
	ctx := context.Background()

	send := func(who *model.Account, room, text string) {
		_, err := svc.Send(ctx, who, room, text)
		require.NoError(t, err)
	}
	send(alice, roomB, "M1")
	send(carol, roomC, "other room")
	send(bob, roomB, "M2")
	send(carol, roomC, "other room again")
	send(alice, roomB, "M3")

	history, err := svc.History(ctx, bob, roomB)
	require.NoError(t, err)
	require.Len(t, history, 3)

	var contents []string
	for _, m := range history {
		contents = append(contents, m.Content)
		assert.Equal(t, roomB, m.BookingID)
		require.NotNil(t, m.Sender)
		assert.Empty(t, m.Sender.Email)
	}
	assert.Equal(t, []string{"M1", "M2", "M3"}, contents)
	assert.Equal(t, "Bob", history[1].Sender.Name)
}

func TestHistory_SameMillisecondKeepsSendOrder(t *testing.T) {
	repo := &memoryMessages{messages: map[string]*model.Message{}}
	svc := newChat(repo, nil)
	frozen := time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return frozen }
	ctx := context.Background()

	want := []string{"M1", "M2", "M3", "M4", "M5", "M6", "M7", "M8"}
	for i, text := range want {
		who := alice
		if i%2 == 1 {
			who = bob
		}
		_, err := svc.Send(ctx, who, roomB, text)
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, alice, roomB)
	require.NoError(t, err)
	var got []string
	for _, m := range history {
		assert.Equal(t, frozen, m.CreatedAt)
		got = append(got, m.Content)
	}
	assert.Equal(t, want, got)
}

func TestNewMessageID_TimeOrdered(t *testing.T) {
	prev := newMessageID()
	for i := 0; i < 1000; i++ {
		next := newMessageID()
		require.Less(t, prev, next)
		prev = next
	}
}

func TestHistory_NonParticipant(t *testing.T) {
	svc := newChat(&memoryMessages{messages: map[string]*model.Message{}}, nil)

	_, err := svc.History(context.Background(), carol, roomB)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "err = %v", err)

	_, err = svc.History(context.Background(), alice, "65f0000000000000000000ff")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "err = %v", err)
}

func TestSend_Validation(t *testing.T) {
	svc := newChat(&memoryMessages{messages: map[string]*model.Message{}}, nil)

	_, err := svc.Send(context.Background(), alice, roomB, "   ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "err = %v", err)

	_, err = svc.Send(context.Background(), carol, roomB, "hi")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "err = %v", err)
}

func TestSend_StoreFailureWithoutOutbox(t *testing.T) {
	svc := newChat(&memoryMessages{messages: map[string]*model.Message{}, failures: 1}, nil)

	_, err := svc.Send(context.Background(), alice, roomB, "hello")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal), "err = %v", err)
}

func TestSend_StoreFailureIsQueued(t *testing.T) {
	repo := &memoryMessages{messages: map[string]*model.Message{}, failures: 1}
	outbox := &recordingOutbox{}
	svc := newChat(repo, outbox)

	view, err := svc.Send(context.Background(), alice, roomB, "hello")
	require.ErrorIs(t, err, chaterrors.ErrQueued)
	require.NotNil(t, view)
	require.Len(t, outbox.queued, 1)
	assert.Equal(t, view.ID, outbox.queued[0].ID)

	outbox.err = errors.New("broker down")
	repo.failures = 1
	_, err = svc.Send(context.Background(), alice, roomB, "again")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal), "err = %v", err)
}

func TestOutboxHandler(t *testing.T) {
	repo := &memoryMessages{messages: map[string]*model.Message{}}
	svc := newChat(repo, nil)

	msg := &model.Message{ID: "1b4e28ba-2fa1-4d3b-883f-0016d3cca427", BookingID: roomB, SenderID: alice.ID, Content: "late", CreatedAt: time.Now().UTC()}
	km, err := kafka.NewMessage().WithKey(roomB).WithValue(msg).WithEventType(kafka.EventChatMessagePending).Build()
	require.NoError(t, err)

	var delivered []*model.MessageView
	handler := OutboxHandler(svc, func(ctx context.Context, view *model.MessageView) error {
		delivered = append(delivered, view)
		return nil
	}, logger.Nop())

	repo.failures = 1
	err = handler(context.Background(), km)
	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypeTransient, kafka.ClassifyError(err))
	assert.Empty(t, delivered)

	require.NoError(t, handler(context.Background(), km))
	// A redelivery of a stored message is not an error.
	require.NoError(t, handler(context.Background(), km))

	require.Len(t, delivered, 2)
	assert.Equal(t, "Alice", delivered[0].Sender.Name)
	history, _ := repo.FindByBooking(context.Background(), roomB)
	assert.Len(t, history, 1)

	bad := kafka.Message{Value: []byte("{"), Headers: map[string]string{}}
	err = handler(context.Background(), bad)
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
}
