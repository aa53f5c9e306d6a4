package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dropchat/internal/auth"
	"dropchat/internal/config"
	"dropchat/internal/metadata"
	"dropchat/internal/metrics"
	"dropchat/internal/services"
	"dropchat/internal/store"
	ws "dropchat/internal/websocket"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Session: config.SessionConfig{
			Secret:    []byte("test-secret"),
			ExpiresIn: time.Hour,
		},
		Rooms: config.RoomConfig{
			ContentRoomTTL:    30 * time.Minute,
			StandaloneRoomTTL: 2 * time.Hour,
		},
	}

	clock := store.SystemClock()
	entryStore := store.NewEntryStore(clock)
	roomStore := store.NewRoomStore(clock)
	m := metrics.New()

	authService := auth.NewService(cfg)
	entryService := services.NewEntryService(entryStore, clock, metadata.NewFetcher(), m)
	roomService := services.NewRoomService(roomStore, cfg)
	broker := ws.NewBroker(roomStore, entryService, m, cfg.Rooms.ContentRoomTTL, cfg.Rooms.StandaloneRoomTTL)

	mux := NewRouter(
		NewSessionHandlers(authService),
		NewEntryHandlers(entryService),
		NewRoomHandlers(roomService),
		NewWebSocketHandlers(authService, broker, m),
		m,
	)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
