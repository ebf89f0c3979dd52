package handler

import (
	"net/http"
	"shubakar/internal/budget/service"
	httputil "shubakar/pkg/http"
	"shubakar/pkg/logger"
	"shubakar/pkg/middleware"
	"shubakar/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BudgetHandler struct {
	service service.BudgetService
	guard   *middleware.Guard
	log     *logger.Logger
}

func NewBudgetHandler(service service.BudgetService, guard *middleware.Guard, log *logger.Logger) *BudgetHandler {
	return &BudgetHandler{service: service, guard: guard, log: log}
}

func (h *BudgetHandler) Predict(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BudgetRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Predict", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	prediction, err := h.service.Predict(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Predict", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, prediction); err != nil {
		h.log.Error("failed to write success response", "handler", "Predict", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BudgetHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/budget/predict", h.guard.Protect(h.Predict))
}
