package handler

import (
	"net/http"
	"shubakar/internal/accounts/service"
	apperrors "shubakar/pkg/errors"
	httputil "shubakar/pkg/http"
	"shubakar/pkg/logger"
	"shubakar/pkg/middleware"
	"shubakar/pkg/model"
	"time"

	"github.com/julienschmidt/httprouter"
)

type AccountHandler struct {
	service      service.AccountService
	guard        *middleware.Guard
	cookieName   string
	cookieSecure bool
	log          *logger.Logger
}

func NewAccountHandler(service service.AccountService, guard *middleware.Guard, cookieName string, cookieSecure bool, log *logger.Logger) *AccountHandler {
	return &AccountHandler{
		service:      service,
		guard:        guard,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		log:          log,
	}
}

type sessionResponse struct {
	User  *model.Account `json:"user"`
	Token string         `json:"token"`
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	session, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	h.setSessionCookie(w, session)
	if err := httputil.WriteCreated(w, sessionResponse{User: session.User, Token: session.Token}); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	session, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	h.setSessionCookie(w, session)
	if err := httputil.WriteSuccess(w, sessionResponse{User: session.User, Token: session.Token}); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

// Logout clears the session cookie. Issued tokens stay valid until they
// expire.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	if err := httputil.WriteMessage(w, "logged out"); err != nil {
		h.log.Error("failed to write message response", "handler", "Logout", "operation", "WriteMessage", "error", err)
	}
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("invalid token or session expired")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Me", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"user": account}); err != nil {
		h.log.Error("failed to write success response", "handler", "Me", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	var req model.UpdateProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateProfile", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	account, err := h.service.UpdateProfile(r.Context(), caller.ID, &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateProfile", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"user": account}); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateProfile", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	var req model.UpdatePasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdatePassword", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	session, err := h.service.UpdatePassword(r.Context(), caller.ID, &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdatePassword", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	h.setSessionCookie(w, session)
	if err := httputil.WriteSuccess(w, sessionResponse{User: session.User, Token: session.Token}); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdatePassword", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AccountHandler) setSessionCookie(w http.ResponseWriter, session *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AccountHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/register", h.Register)
	router.POST("/api/v1/auth/login", h.Login)
	router.POST("/api/v1/auth/logout", h.Logout)
	router.GET("/api/v1/auth/me", h.guard.Protect(h.Me))
	router.PATCH("/api/v1/auth/profile", h.guard.Protect(h.UpdateProfile))
	router.PATCH("/api/v1/auth/password", h.guard.Protect(h.UpdatePassword))
}
