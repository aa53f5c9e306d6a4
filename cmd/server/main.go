package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dropchat/internal/auth"
	"dropchat/internal/config"
	"dropchat/internal/handlers"
	"dropchat/internal/metadata"
	"dropchat/internal/metrics"
	"dropchat/internal/services"
	"dropchat/internal/store"
	"dropchat/internal/websocket"
	"dropchat/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize stores and the periodic sweep
	clock := store.SystemClock()
	entryStore := store.NewEntryStore(clock)
	roomStore := store.NewRoomStore(clock)
	sweeper := store.NewSweeper(cfg.Sweep.Interval, clock, entryStore, roomStore)
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize services
	m := metrics.New()
	authService := auth.NewService(cfg)
	entryService := services.NewEntryService(entryStore, clock, metadata.NewFetcher(), m)
	roomService := services.NewRoomService(roomStore, cfg)

	// Initialize the room broker
	broker := websocket.NewBroker(roomStore, entryService, m, cfg.Rooms.ContentRoomTTL, cfg.Rooms.StandaloneRoomTTL)

	// Initialize handlers
	sessionHandlers := handlers.NewSessionHandlers(authService)
	entryHandlers := handlers.NewEntryHandlers(entryService)
	roomHandlers := handlers.NewRoomHandlers(roomService)
	wsHandlers := handlers.NewWebSocketHandlers(authService, broker, m)

	// Setup routes
	mux := handlers.NewRouter(sessionHandlers, entryHandlers, roomHandlers, wsHandlers, m)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	logger.Info("🚀 Server started on http://localhost%s", cfg.Server.Port)
	logger.Info("📡 WebSocket endpoint: ws://localhost%s/ws", cfg.Server.Port)
	printAPIEndpoints()

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server shutting down...")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Entry-Password")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func printAPIEndpoints() {
	logger.Info("🔗 API endpoints:")
	logger.Info("   POST /session")
	logger.Info("   POST /entries")
	logger.Info("   GET  /entries/{code}")
	logger.Info("   POST /entries/{code}/unlock")
	logger.Info("   DELETE /entries/{code}")
	logger.Info("   POST /chats")
	logger.Info("   GET  /chats/{code}")
	logger.Info("   GET  /metrics")
}
