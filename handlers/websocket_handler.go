package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/scoreboard/realtime"
	"github.com/Dosada05/scoreboard/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub                 *realtime.Hub
	teamService         services.TeamService
	notificationService services.NotificationService
	upgrader            websocket.Upgrader
	logger              *slog.Logger
}

// NewWebSocketHandler accepts connections from the given origins; "*" allows any.
func NewWebSocketHandler(hub *realtime.Hub, ts services.TeamService, ns services.NotificationService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:                 hub,
		teamService:         ts,
		notificationService: ns,
		logger:              logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// ServeWs upgrades the request, sends an initial-data snapshot and subscribes
// the client to the rooms named in ?room= (repeatable).
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ListTeams(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	pending, err := h.notificationService.PendingNotifications(r.Context(), nil)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed", slog.Any("error", err))
		return
	}

	rooms := r.URL.Query()["room"]
	client := realtime.NewClient(h.hub, conn, rooms)
	if err := client.Enqueue(services.EventInitialData, jsonResponse{"teams": teams, "pending": pending}); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to queue initial data", slog.Any("error", err))
	}
	h.hub.Serve(client)

	h.logger.DebugContext(r.Context(), "WebSocket client connected", slog.Any("rooms", rooms))
}
