package handler

import (
	"net/http"
	"shubakar/internal/chat/relay"
	"shubakar/internal/chat/service"
	httputil "shubakar/pkg/http"
	"shubakar/pkg/logger"
	"shubakar/pkg/middleware"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const WebsocketPath = "/ws/chat"

type ChatHandler struct {
	service  service.ChatService
	session  *relay.Session
	guard    *middleware.Guard
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewChatHandler(service service.ChatService, session *relay.Session, guard *middleware.Guard, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		session: session,
		guard:   guard,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The frontend is served from another origin. Session cookies are
			// SameSite=Lax so a cross-site page cannot ride them here.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := middleware.AccountFrom(r.Context())

	messages, err := h.service.History(r.Context(), caller, ps.ByName("bookingId"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "History", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"results": len(messages), "messages": messages}); err != nil {
		h.log.Error("failed to write success response", "handler", "History", "operation", "WriteSuccess", "error", err)
	}
}

// Connect authenticates before upgrading, so a bad token gets a normal 401.
func (h *ChatHandler) Connect(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	account, err := h.guard.Authenticate(r.Context(), h.guard.ExtractToken(r, true))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Connect", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.log.Warn("Websocket upgrade failed", "account_id", account.ID, "error", err)
		return
	}

	h.session.Serve(r.Context(), conn, account)
}

func (h *ChatHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/chat/:bookingId", h.guard.Protect(h.History))
	router.GET(WebsocketPath, h.Connect)
}
