package handler

import (
	"math"
	"net/http"
	"shubakar/internal/vendors/service"
	apperrors "shubakar/pkg/errors"
	httputil "shubakar/pkg/http"
	"shubakar/pkg/logger"
	"shubakar/pkg/middleware"
	"shubakar/pkg/model"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
)

type VendorHandler struct {
	service service.VendorService
	guard   *middleware.Guard
	log     *logger.Logger
}

func NewVendorHandler(service service.VendorService, guard *middleware.Guard, log *logger.Logger) *VendorHandler {
	return &VendorHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *VendorHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	filter := model.VendorSearchFilter{
		Service: strings.TrimSpace(query.Get("service")),
		City:    strings.TrimSpace(query.Get("city")),
	}
	if s := strings.TrimSpace(query.Get("minPrice")); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			h.writeError(w, "Search", apperrors.InvalidInput("invalid minPrice parameter: "+s))
			return
		}
		filter.MinPrice = &v
	}

	vendors, err := h.service.Search(r.Context(), filter)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"results": len(vendors), "vendors": vendors}); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VendorHandler) CreateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	var profile model.VendorProfile
	if err := httputil.DecodeJSON(r, &profile); err != nil {
		h.writeError(w, "CreateProfile", err)
		return
	}

	created, err := h.service.CreateProfile(r.Context(), caller.ID, &profile)
	if err != nil {
		h.writeError(w, "CreateProfile", err)
		return
	}

	if err := httputil.WriteCreated(w, map[string]any{"profile": created}); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateProfile", "operation", "WriteCreated", "error", err)
	}
}

func (h *VendorHandler) GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	profile, err := h.service.GetOwnProfile(r.Context(), caller.ID)
	if err != nil {
		h.writeError(w, "GetProfile", err)
		return
	}
	h.writeProfile(w, "GetProfile", profile)
}

func (h *VendorHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	var update model.VendorProfileUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateProfile", err)
		return
	}

	profile, err := h.service.UpdateOwnProfile(r.Context(), caller.ID, &update)
	if err != nil {
		h.writeError(w, "UpdateProfile", err)
		return
	}
	h.writeProfile(w, "UpdateProfile", profile)
}

func (h *VendorHandler) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListAll", err)
		return
	}

	vendors, total, err := h.service.ListAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "ListAll", err)
		return
	}

	if err := httputil.WritePaginated(w, vendors, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *VendorHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.ApproveVendorRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Approve", err)
		return
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))

	profile, err := h.service.Approve(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Approve", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, httputil.Envelope{
		Status:  apperrors.StatusSuccess,
		Message: "Vendor " + req.Status,
		Data:    map[string]any{"profile": profile},
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Approve", "operation", "WriteJSON", "error", err)
	}
}

func (h *VendorHandler) AdminUpdate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.VendorProfileUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "AdminUpdate", err)
		return
	}

	profile, err := h.service.AdminUpdate(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "AdminUpdate", err)
		return
	}
	h.writeProfile(w, "AdminUpdate", profile)
}

func (h *VendorHandler) AdminDelete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.AdminDelete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "AdminDelete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *VendorHandler) writeProfile(w http.ResponseWriter, op string, profile *model.VendorProfile) {
	if err := httputil.WriteSuccess(w, map[string]any{"profile": profile}); err != nil {
		h.log.Error("failed to write success response", "handler", op, "operation", "WriteSuccess", "error", err)
	}
}

func (h *VendorHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *VendorHandler) RegisterRoutes(router *httprouter.Router) {
	vendorOnly := []string{model.RoleVendor}
	admins := []string{model.RoleAdmin, model.RoleSuperAdmin}

	router.GET("/api/v1/vendors/search", h.Search)
	router.POST("/api/v1/vendors/profile", h.guard.Protect(h.CreateProfile, vendorOnly...))
	router.GET("/api/v1/vendors/profile", h.guard.Protect(h.GetProfile, vendorOnly...))
	router.PATCH("/api/v1/vendors/profile", h.guard.Protect(h.UpdateProfile, vendorOnly...))
	router.GET("/api/v1/vendors/all", h.guard.Protect(h.ListAll, admins...))
	router.PATCH("/api/v1/vendors/approve/:id", h.guard.Protect(h.Approve, admins...))
	router.PATCH("/api/v1/vendors/admin/:id", h.guard.Protect(h.AdminUpdate, admins...))
	router.DELETE("/api/v1/vendors/admin/:id", h.guard.Protect(h.AdminDelete, admins...))
}
