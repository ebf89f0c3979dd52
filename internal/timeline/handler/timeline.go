package handler

import (
	"net/http"
	"shubakar/internal/timeline/service"
	httputil "shubakar/pkg/http"
	"shubakar/pkg/logger"
	"shubakar/pkg/middleware"
	"shubakar/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type TimelineHandler struct {
	service service.TimelineService
	guard   *middleware.Guard
	log     *logger.Logger
}

func NewTimelineHandler(service service.TimelineService, guard *middleware.Guard, log *logger.Logger) *TimelineHandler {
	return &TimelineHandler{service: service, guard: guard, log: log}
}

func (h *TimelineHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	items, err := h.service.List(r.Context(), caller.ID)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"results": len(items), "items": items}); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TimelineHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	var req model.CreateTimelineItemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	item, err := h.service.Create(r.Context(), caller.ID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, map[string]any{"item": item}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *TimelineHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	var update model.TimelineItemUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	item, err := h.service.Update(r.Context(), caller.ID, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"item": item}); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TimelineHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	if err := h.service.Delete(r.Context(), caller.ID, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *TimelineHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *TimelineHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/timeline", h.guard.Protect(h.List))
	router.POST("/api/v1/timeline", h.guard.Protect(h.Create))
	router.PATCH("/api/v1/timeline/:id", h.guard.Protect(h.Update))
	router.DELETE("/api/v1/timeline/:id", h.guard.Protect(h.Delete))
}
