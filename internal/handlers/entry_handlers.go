package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"dropchat/internal/models"
	"dropchat/internal/services"
	"dropchat/internal/store"
	"dropchat/pkg/logger"
)

type EntryHandlers struct {
	entryService *services.EntryService
}

func NewEntryHandlers(entryService *services.EntryService) *EntryHandlers {
	return &EntryHandlers{
		entryService: entryService,
	}
}

func (h *EntryHandlers) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	resp, err := h.entryService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("Create entry error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// ReadEntry serves the content behind a code. A successful read counts as a
// view and consumes one-time entries. Password-protected entries answer with
// requires_password until a valid X-Entry-Password header arrives; absent and
// expired codes are both plain 404s.
func (h *EntryHandlers) ReadEntry(w http.ResponseWriter, r *http.Request, code string) {
	password := r.Header.Get("X-Entry-Password")

	resp, err := h.entryService.Read(code, password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrPasswordRequired):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]bool{"requires_password": true})
		return
	case errors.Is(err, services.ErrUnauthorized):
		http.Error(w, "wrong password", http.StatusUnauthorized)
		return
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
		return
	default:
		logger.Error("Read entry error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *EntryHandlers) UnlockEntry(w http.ResponseWriter, r *http.Request, code string) {
	var req models.UnlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	switch err := h.entryService.Unlock(code, req.Password); {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, services.ErrUnauthorized):
		http.Error(w, "wrong password", http.StatusUnauthorized)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		logger.Error("Unlock entry error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *EntryHandlers) DeleteEntry(w http.ResponseWriter, r *http.Request, code string) {
	h.entryService.Delete(code)
	w.WriteHeader(http.StatusNoContent)
}
