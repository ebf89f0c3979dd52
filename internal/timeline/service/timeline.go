package service

import (
	"context"
	"errors"
	timelineerrors "shubakar/internal/timeline/errors"
	"shubakar/internal/timeline/repository"
	"shubakar/internal/timeline/validator"
	"shubakar/pkg/config"
	mongotx "shubakar/pkg/db/mongo"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/model"
	"shubakar/pkg/sanitizer"
	"shubakar/pkg/validation"

	"go.mongodb.org/mongo-driver/bson"
)

type TimelineService interface {
	List(ctx context.Context, userID string) ([]*model.TimelineItem, error)
	Create(ctx context.Context, userID string, req *model.CreateTimelineItemRequest) (*model.TimelineItem, error)
	Update(ctx context.Context, userID, id string, u *model.TimelineItemUpdate) (*model.TimelineItem, error)
	Delete(ctx context.Context, userID, id string) error
}

type timelineService struct {
	repo      repository.TimelineRepository
	validator *validator.TimelineValidator
	cfg       *config.Config
}

func NewTimelineService(repo repository.TimelineRepository, validator *validator.TimelineValidator, cfg *config.Config) TimelineService {
	return &timelineService{repo: repo, validator: validator, cfg: cfg}
}

func (s *timelineService) List(ctx context.Context, userID string) ([]*model.TimelineItem, error) {
	items, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to list timeline items", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve timeline", err)
	}
	return items, nil
}

func (s *timelineService) Create(ctx context.Context, userID string, req *model.CreateTimelineItemRequest) (*model.TimelineItem, error) {
	req.Title = sanitizer.TrimAndNormalize(req.Title)
	req.Time = sanitizer.TrimAndNormalize(req.Time)
	req.Description = sanitizer.NormalizeText(req.Description)

	if err := s.validator.ValidateCreate(req); err != nil {
		return nil, validation.ToAppError("Timeline item validation failed", err)
	}

	item := &model.TimelineItem{
		UserID:      userID,
		Title:       req.Title,
		Time:        req.Time,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
	}
	if item.Category == "" {
		item.Category = model.TimelineCategoryGeneral
	}
	if item.Status == "" {
		item.Status = model.TimelineStatusPending
	}
	if err := s.validator.ValidateItem(item); err != nil {
		return nil, validation.ToAppError("Timeline item validation failed", err)
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.cfg.Log.Error("Failed to create timeline item", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to create timeline item", err)
	}

	s.cfg.Log.Info("Timeline item created", "id", item.ID, "user_id", userID, "time", item.Time)
	return item, nil
}

func (s *timelineService) Update(ctx context.Context, userID, id string, u *model.TimelineItemUpdate) (*model.TimelineItem, error) {
	if u.Title != nil {
		v := sanitizer.TrimAndNormalize(*u.Title)
		u.Title = &v
	}
	if u.Time != nil {
		v := sanitizer.TrimAndNormalize(*u.Time)
		u.Time = &v
	}
	if err := s.validator.ValidateUpdate(u); err != nil {
		return nil, validation.ToAppError("Timeline item validation failed", err)
	}

	set := bson.M{}
	mongotx.SetIfPresent(set, "title", u.Title)
	mongotx.SetIfPresent(set, "time", u.Time)
	mongotx.SetIfPresent(set, "description", u.Description)
	mongotx.SetIfPresent(set, "category", u.Category)
	mongotx.SetIfPresent(set, "status", u.Status)

	item, err := s.repo.Update(ctx, id, userID, set)
	if err != nil {
		return nil, s.translateError(err, "Failed to update timeline item", id)
	}

	s.cfg.Log.Info("Timeline item updated", "id", id, "fields", len(set))
	return item, nil
}

func (s *timelineService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return s.translateError(err, "Failed to delete timeline item", id)
	}
	s.cfg.Log.Info("Timeline item deleted", "id", id)
	return nil
}

func (s *timelineService) translateError(err error, message, id string) error {
	switch {
	case errors.Is(err, timelineerrors.ErrNotFound), errors.Is(err, timelineerrors.ErrInvalidID):
		return apperrors.NotFoundWithID("Timeline item", id)
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}
