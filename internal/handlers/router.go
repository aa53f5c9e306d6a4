package handlers

import (
	"net/http"
	"strings"

	"dropchat/internal/metrics"
)

// NewRouter wires all endpoints onto a mux. Kept out of main so tests can
// run the full HTTP surface against an httptest server.
func NewRouter(sessionHandlers *SessionHandlers, entryHandlers *EntryHandlers, roomHandlers *RoomHandlers, wsHandlers *WebSocketHandlers, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	// Session route
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		sessionHandlers.CreateSession(w, r)
	})

	// Entry routes
	mux.HandleFunc("/entries", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/entries" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		entryHandlers.CreateEntry(w, r)
	})

	// Entry sub-routes
	mux.HandleFunc("/entries/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) < 3 || parts[2] == "" {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		code := parts[2]

		// /entries/{code}/unlock
		if len(parts) == 4 && parts[3] == "unlock" && r.Method == http.MethodPost {
			entryHandlers.UnlockEntry(w, r, code)
			return
		}

		// /entries/{code}
		if len(parts) == 3 {
			switch r.Method {
			case http.MethodGet:
				entryHandlers.ReadEntry(w, r, code)
			case http.MethodDelete:
				entryHandlers.DeleteEntry(w, r, code)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		http.Error(w, "endpoint not found", http.StatusNotFound)
	})

	// Standalone chat room routes
	mux.HandleFunc("/chats", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chats" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		roomHandlers.CreateRoom(w, r)
	})

	mux.HandleFunc("/chats/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) != 3 || parts[2] == "" {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		roomHandlers.GetRoom(w, r, parts[2])
	})

	// WebSocket route
	mux.HandleFunc("/ws", wsHandlers.HandleWebSocket)

	// Metrics
	mux.Handle("/metrics", m.Handler())

	return mux
}
