package handler

import (
	"net/http"
	"shubakar/internal/bookings/service"
	apperrors "shubakar/pkg/errors"
	httputil "shubakar/pkg/http"
	"shubakar/pkg/logger"
	"shubakar/pkg/middleware"
	"shubakar/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	guard   *middleware.Guard
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, guard *middleware.Guard, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	var req model.CreateBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), caller, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, map[string]any{"booking": booking}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// List accepts ?status= for everyone and ?vendorId= for admins. The vendor
// filter is ignored for other roles since their scope is fixed.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	filter := model.BookingFilter{
		VendorID: query.Get("vendorId"),
		Status:   query.Get("status"),
	}
	if filter.Status != "" && !model.IsBookingStatus(filter.Status) {
		h.writeError(w, "List", apperrors.InvalidInput("invalid status parameter: "+filter.Status))
		return
	}

	bookings, total, err := h.service.List(r.Context(), caller, filter, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"results":  len(bookings),
		"total":    total,
		"limit":    limit,
		"offset":   offset,
		"bookings": bookings,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	var req model.UpdateStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), caller, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"booking": booking}); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.guard.Protect(h.Create, model.RoleCustomer))
	router.GET("/api/v1/bookings", h.guard.Protect(h.List))
	router.PATCH("/api/v1/bookings/:id", h.guard.Protect(h.UpdateStatus,
		model.RoleVendor, model.RoleCustomer, model.RoleAdmin, model.RoleSuperAdmin))
}
