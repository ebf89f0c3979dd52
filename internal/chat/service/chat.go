package service

import (
	"context"
	"errors"
	chaterrors "shubakar/internal/chat/errors"
	"shubakar/internal/chat/repository"
	"shubakar/internal/chat/validator"
	"shubakar/pkg/config"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/model"
	"shubakar/pkg/sanitizer"
	"shubakar/pkg/validation"
	"time"

	"github.com/google/uuid"
)

type ChatService interface {
	// History returns a booking's messages oldest first, for its
	// participants only.
	History(ctx context.Context, caller *model.Account, bookingID string) ([]*model.MessageView, error)
	// Authorize admits the booking's customer, the owning vendor and admins.
	Authorize(ctx context.Context, caller *model.Account, bookingID string) error
	// Send stores a message from caller. When storage fails and an outbox is
	// configured the message is queued and ErrQueued is returned with it.
	Send(ctx context.Context, caller *model.Account, bookingID, content string) (*model.MessageView, error)
	// Persist stores a message taken off the outbox. An already stored
	// message counts as success.
	Persist(ctx context.Context, msg *model.Message) (*model.MessageView, error)
}

type BookingAccess interface {
	GetForParticipant(ctx context.Context, caller *model.Account, id string) (*model.Booking, error)
}

type AccountLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Account, error)
}

// Outbox holds messages that could not be stored on the first attempt.
type Outbox interface {
	Enqueue(ctx context.Context, msg *model.Message) error
}

type chatService struct {
	repo      repository.MessageRepository
	bookings  BookingAccess
	accounts  AccountLookup
	outbox    Outbox
	validator *validator.MessageValidator
	cfg       *config.Config
	now       func() time.Time
}

// NewChatService accepts a nil outbox; failed writes are then reported to
// the sender.
func NewChatService(
	repo repository.MessageRepository,
	bookings BookingAccess,
	accounts AccountLookup,
	outbox Outbox,
	validator *validator.MessageValidator,
	cfg *config.Config,
) ChatService {
	return &chatService{
		repo:      repo,
		bookings:  bookings,
		accounts:  accounts,
		outbox:    outbox,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *chatService) Authorize(ctx context.Context, caller *model.Account, bookingID string) error {
	_, err := s.bookings.GetForParticipant(ctx, caller, bookingID)
	return err
}

func (s *chatService) History(ctx context.Context, caller *model.Account, bookingID string) ([]*model.MessageView, error) {
	if err := s.Authorize(ctx, caller, bookingID); err != nil {
		return nil, err
	}

	messages, err := s.repo.FindByBooking(ctx, bookingID)
	if err != nil {
		s.cfg.Log.Error("Failed to load chat history", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve messages", err)
	}

	senders, err := s.senders(ctx, messages)
	if err != nil {
		s.cfg.Log.Error("Failed to resolve chat senders", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve messages", err)
	}

	views := make([]*model.MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, &model.MessageView{Message: m, Sender: senders[m.SenderID]})
	}
	return views, nil
}

func (s *chatService) Send(ctx context.Context, caller *model.Account, bookingID, content string) (*model.MessageView, error) {
	if err := s.Authorize(ctx, caller, bookingID); err != nil {
		return nil, err
	}

	msg := &model.Message{
		ID:        newMessageID(),
		BookingID: bookingID,
		SenderID:  caller.ID,
		Content:   sanitizer.NormalizeText(content),
		CreatedAt: s.now().UTC(),
	}
	if err := s.validator.ValidateMessage(msg); err != nil {
		return nil, validation.ToAppError("Message validation failed", err)
	}

	view := &model.MessageView{Message: msg, Sender: senderSummary(caller)}

	err := s.repo.Create(ctx, msg)
	if err == nil || errors.Is(err, chaterrors.ErrDuplicate) {
		s.cfg.Log.Debug("Chat message stored", "id", msg.ID, "booking_id", bookingID, "sender_id", caller.ID)
		return view, nil
	}

	if s.outbox == nil {
		s.cfg.Log.Error("Failed to store chat message", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to send message", err)
	}
	if qErr := s.outbox.Enqueue(ctx, msg); qErr != nil {
		s.cfg.Log.Error("Failed to store or queue chat message", "booking_id", bookingID, "error", err, "queue_error", qErr)
		return nil, apperrors.Internal("Failed to send message", errors.Join(err, qErr))
	}

	s.cfg.Log.Warn("Chat message queued for retry", "id", msg.ID, "booking_id", bookingID, "error", err)
	return view, chaterrors.ErrQueued
}

// newMessageID returns a time-ordered UUIDv7, so ids stored in the same
// millisecond still sort in creation order.
func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *chatService) Persist(ctx context.Context, msg *model.Message) (*model.MessageView, error) {
	if err := s.validator.ValidateMessage(msg); err != nil {
		return nil, validation.ToAppError("Message validation failed", err)
	}
	if err := s.repo.Create(ctx, msg); err != nil && !errors.Is(err, chaterrors.ErrDuplicate) {
		return nil, err
	}

	senders, err := s.senders(ctx, []*model.Message{msg})
	if err != nil {
		s.cfg.Log.Warn("Failed to resolve sender of queued message", "id", msg.ID, "error", err)
	}
	s.cfg.Log.Info("Queued chat message stored", "id", msg.ID, "booking_id", msg.BookingID)
	return &model.MessageView{Message: msg, Sender: senders[msg.SenderID]}, nil
}

func (s *chatService) senders(ctx context.Context, messages []*model.Message) (map[string]*model.AccountSummary, error) {
	seen := make(map[string]struct{}, len(messages))
	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			ids = append(ids, m.SenderID)
		}
	}

	out := make(map[string]*model.AccountSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	accounts, err := s.accounts.FindByIDs(ctx, ids)
	if err != nil {
		return out, err
	}
	for _, a := range accounts {
		out[a.ID] = senderSummary(a)
	}
	return out, nil
}

// senderSummary leaves out the email; room members only see names.
func senderSummary(a *model.Account) *model.AccountSummary {
	return &model.AccountSummary{ID: a.ID, Name: a.Name}
}
