package handler

import (
	"net/http"
	"shubakar/internal/payments/service"
	httputil "shubakar/pkg/http"
	"shubakar/pkg/logger"
	"shubakar/pkg/middleware"
	"shubakar/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PaymentHandler struct {
	service service.PaymentService
	guard   *middleware.Guard
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, guard *middleware.Guard, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, guard: guard, log: log}
}

func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	var req model.PayRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Pay", err)
		return
	}

	receipt, err := h.service.Pay(r.Context(), caller, &req)
	if err != nil {
		h.writeError(w, "Pay", err)
		return
	}

	if err := httputil.WriteSuccess(w, receipt); err != nil {
		h.log.Error("failed to write success response", "handler", "Pay", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) Invoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	invoice, err := h.service.Invoice(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Invoice", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"invoice": invoice}); err != nil {
		h.log.Error("failed to write success response", "handler", "Invoice", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments/pay", h.guard.Protect(h.Pay, model.RoleCustomer))
	router.GET("/api/v1/payments/invoice/:id", h.guard.Protect(h.Invoice,
		model.RoleCustomer, model.RoleVendor, model.RoleAdmin, model.RoleSuperAdmin))
}
