package handlers

import (
	"encoding/json"
	"net/http"

	"dropchat/internal/auth"
	"dropchat/pkg/logger"
)

type SessionHandlers struct {
	authService *auth.Service
}

func NewSessionHandlers(authService *auth.Service) *SessionHandlers {
	return &SessionHandlers{
		authService: authService,
	}
}

// CreateSession hands out an anonymous session token. No credentials, no
// account: the token only ties a connection to a stable random author id.
func (h *SessionHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	token, err := h.authService.IssueToken()
	if err != nil {
		logger.Error("Issue token error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}
