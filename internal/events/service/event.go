package service

import (
	"context"
	"errors"
	eventerrors "shubakar/internal/events/errors"
	"shubakar/internal/events/repository"
	"shubakar/internal/events/validator"
	"shubakar/pkg/config"
	mongotx "shubakar/pkg/db/mongo"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/model"
	"shubakar/pkg/sanitizer"
	"shubakar/pkg/validation"

	"go.mongodb.org/mongo-driver/bson"
)

type EventService interface {
	Create(ctx context.Context, userID string, req *model.CreateEventRequest) (*model.Event, error)
	List(ctx context.Context, userID string) ([]*model.Event, error)
	Get(ctx context.Context, userID, id string) (*model.Event, error)
	Update(ctx context.Context, userID, id string, u *model.EventUpdate) (*model.Event, error)
	Delete(ctx context.Context, userID, id string) error
}

type eventService struct {
	repo      repository.EventRepository
	validator *validator.EventValidator
	cfg       *config.Config
}

func NewEventService(repo repository.EventRepository, validator *validator.EventValidator, cfg *config.Config) EventService {
	return &eventService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *eventService) Create(ctx context.Context, userID string, req *model.CreateEventRequest) (*model.Event, error) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Location = sanitizer.TrimAndNormalize(req.Location)

	if err := s.validator.ValidateCreate(req); err != nil {
		return nil, validation.ToAppError("Event validation failed", err)
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid date: " + req.Date)
	}

	e := &model.Event{
		UserID:   userID,
		Name:     req.Name,
		Type:     req.Type,
		Date:     date,
		Guests:   req.Guests,
		Location: req.Location,
		Status:   req.Status,
	}
	if e.Status == "" {
		e.Status = model.EventStatusPlanning
	}
	if req.Budget != nil {
		e.Budget = *req.Budget
	}

	if err := s.validator.ValidateEvent(e); err != nil {
		return nil, validation.ToAppError("Event validation failed", err)
	}

	if err := s.repo.Create(ctx, e); err != nil {
		s.cfg.Log.Error("Failed to create event", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to create event", err)
	}

	s.cfg.Log.Info("Event created successfully", "id", e.ID, "user_id", userID, "type", e.Type)
	return e, nil
}

func (s *eventService) List(ctx context.Context, userID string) ([]*model.Event, error) {
	events, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to list events", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve events", err)
	}
	return events, nil
}

// Get hides events owned by someone else behind NotFound.
func (s *eventService) Get(ctx context.Context, userID, id string) (*model.Event, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateError(err, "Failed to retrieve event", id)
	}
	if e.UserID != userID {
		return nil, apperrors.NotFoundWithID("Event", id)
	}
	return e, nil
}

func (s *eventService) Update(ctx context.Context, userID, id string, u *model.EventUpdate) (*model.Event, error) {
	if u.Name != nil {
		v := sanitizer.NormalizeName(*u.Name)
		u.Name = &v
	}
	if u.Location != nil {
		v := sanitizer.TrimAndNormalize(*u.Location)
		u.Location = &v
	}
	if err := s.validator.ValidateUpdate(u); err != nil {
		return nil, validation.ToAppError("Event validation failed", err)
	}

	set := bson.M{}
	mongotx.SetIfPresent(set, "name", u.Name)
	mongotx.SetIfPresent(set, "type", u.Type)
	mongotx.SetIfPresent(set, "guests", u.Guests)
	mongotx.SetIfPresent(set, "location", u.Location)
	mongotx.SetIfPresent(set, "budget", u.Budget)
	mongotx.SetIfPresent(set, "status", u.Status)
	if u.Date != nil {
		date, err := model.ParseDate(*u.Date)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid date: " + *u.Date)
		}
		set["date"] = date
	}

	e, err := s.repo.Update(ctx, id, userID, set)
	if err != nil {
		return nil, s.translateError(err, "Failed to update event", id)
	}

	s.cfg.Log.Info("Event updated successfully", "id", id, "fields", len(set))
	return e, nil
}

func (s *eventService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return s.translateError(err, "Failed to delete event", id)
	}
	s.cfg.Log.Info("Event deleted successfully", "id", id)
	return nil
}

func (s *eventService) translateError(err error, message, id string) error {
	switch {
	case errors.Is(err, eventerrors.ErrNotFound), errors.Is(err, eventerrors.ErrInvalidID):
		return apperrors.NotFoundWithID("Event", id)
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}
