package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	gws "github.com/gorilla/websocket"

	mw "realtydash/internal/middleware"
	ws "realtydash/internal/websocket"
)

// WebSocketHandler upgrades GET /ws and hands the connection to the hub
type WebSocketHandler struct {
	hub      *ws.Hub
	builder  ws.DashboardBuilder
	upgrader gws.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates the upgrade handler. Cross-origin upgrades are
// accepted only from allowedOrigins; same-host upgrades are always accepted.
func NewWebSocketHandler(hub *ws.Hub, builder ws.DashboardBuilder, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:     hub,
		builder: builder,
		logger:  logger.With(slog.String("handler", "websocket")),
	}
	h.upgrader = gws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(allowedOrigins),
	}
	return h
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", mw.GetRealIP(r)))
		return
	}

	client := ws.ServeWS(h.hub, ws.WrapConn(conn), h.builder, mw.GetRequestID(r.Context()), h.logger)
	if client == nil {
		h.logger.InfoContext(r.Context(), "WebSocket rejected, server shutting down")
	}
}
