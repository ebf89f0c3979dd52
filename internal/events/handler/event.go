package handler

import (
	"net/http"
	"shubakar/internal/events/service"
	httputil "shubakar/pkg/http"
	"shubakar/pkg/logger"
	"shubakar/pkg/middleware"
	"shubakar/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type EventHandler struct {
	service service.EventService
	guard   *middleware.Guard
	log     *logger.Logger
}

func NewEventHandler(service service.EventService, guard *middleware.Guard, log *logger.Logger) *EventHandler {
	return &EventHandler{service: service, guard: guard, log: log}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	var req model.CreateEventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	event, err := h.service.Create(r.Context(), caller.ID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, map[string]any{"event": event}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	events, err := h.service.List(r.Context(), caller.ID)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"results": len(events), "events": events}); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	event, err := h.service.Get(r.Context(), caller.ID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}
	h.writeEvent(w, "Get", event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	var update model.EventUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	event, err := h.service.Update(r.Context(), caller.ID, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	h.writeEvent(w, "Update", event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	if err := h.service.Delete(r.Context(), caller.ID, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *EventHandler) writeEvent(w http.ResponseWriter, op string, event *model.Event) {
	if err := httputil.WriteSuccess(w, map[string]any{"event": event}); err != nil {
		h.log.Error("failed to write success response", "handler", op, "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *EventHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/events", h.guard.Protect(h.List, model.RoleCustomer))
	router.POST("/api/v1/events", h.guard.Protect(h.Create, model.RoleCustomer))
	router.GET("/api/v1/events/:id", h.guard.Protect(h.Get, model.RoleCustomer))
	router.PATCH("/api/v1/events/:id", h.guard.Protect(h.Update, model.RoleCustomer))
	router.DELETE("/api/v1/events/:id", h.guard.Protect(h.Delete, model.RoleCustomer))
}
