package service

import (
	"context"
	"net/http"
	"shubakar/pkg/client"
	"shubakar/pkg/config"
	apperrors "shubakar/pkg/errors"
	"shubakar/pkg/model"
	"shubakar/pkg/sanitizer"
	"shubakar/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const (
	predictPath  = "/predict-budget"
	upstreamName = "Budget service"
)

type BudgetService interface {
	Predict(ctx context.Context, req *model.BudgetRequest) (*model.BudgetPrediction, error)
}

type budgetService struct {
	client   *client.HttpClient
	validate *validator.Validate
	cfg      *config.Config
}

func NewBudgetService(httpClient *client.HttpClient, cfg *config.Config) BudgetService {
	return &budgetService{
		client:   httpClient,
		validate: validation.New(),
		cfg:      cfg,
	}
}

// Predict forwards to the budget assistant. Any upstream failure surfaces as
// Unavailable; the assistant's own wording is only logged.
func (s *budgetService) Predict(ctx context.Context, req *model.BudgetRequest) (*model.BudgetPrediction, error) {
	req.EventType = sanitizer.TrimAndNormalize(req.EventType)
	req.Location = sanitizer.TrimAndNormalize(req.Location)
	if err := validation.Struct(s.validate, req); err != nil {
		return nil, validation.ToAppError("Budget request validation failed", err)
	}

	resp, err := s.client.POST(ctx, predictPath, req)
	if err != nil {
		s.cfg.Log.Warn("Budget service request failed", "url", s.client.BaseURL+predictPath, "error", err)
		return nil, apperrors.Unavailable(upstreamName)
	}
	if resp.StatusCode != http.StatusOK {
		s.cfg.Log.Warn("Budget service returned an error",
			"status", resp.StatusCode,
			"message", client.GetErrorMessage(resp),
		)
		return nil, apperrors.Unavailable(upstreamName)
	}

	var prediction model.BudgetPrediction
	if err := resp.DecodeJSON(&prediction); err != nil {
		s.cfg.Log.Warn("Budget service returned an unreadable body", "error", err)
		return nil, apperrors.Unavailable(upstreamName)
	}
	if prediction.Breakdown == nil {
		prediction.Breakdown = map[string]float64{}
	}
	if prediction.Warnings == nil {
		prediction.Warnings = []string{}
	}

	s.cfg.Log.Info("Budget predicted",
		"event_type", req.EventType,
		"guests", req.Guests,
		"estimated_total", prediction.EstimatedTotal,
	)
	return &prediction, nil
}
