package handlers

import (
	"net/http"

	"dropchat/internal/auth"
	"dropchat/internal/metrics"
	ws "dropchat/internal/websocket"
	"dropchat/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	authService *auth.Service
	broker      *ws.Broker
	metrics     *metrics.Metrics
	upgrader    websocket.Upgrader
}

func NewWebSocketHandlers(authService *auth.Service, broker *ws.Broker, m *metrics.Metrics) *WebSocketHandlers {
	return &WebSocketHandlers{
		authService: authService,
		broker:      broker,
		metrics:     m,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// HandleWebSocket upgrades the connection and starts the client pumps. Room
// selection happens after the upgrade, via join envelopes on the socket.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	authorToken, err := h.authService.AuthorFromToken(tokenStr)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client := ws.NewClient(conn, authorToken, h.broker)

	h.metrics.LiveConnections.Inc()
	go client.WritePump()
	go func() {
		defer h.metrics.LiveConnections.Dec()
		client.ReadPump()
	}()
}
