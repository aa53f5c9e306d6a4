package services

import (
	"errors"
	"fmt"

	"dropchat/internal/code"
	"dropchat/internal/config"
	"dropchat/internal/models"
	"dropchat/internal/store"
)

type RoomService struct {
	rooms *store.RoomStore
	cfg   *config.Config
}

func NewRoomService(rooms *store.RoomStore, cfg *config.Config) *RoomService {
	return &RoomService{rooms: rooms, cfg: cfg}
}

// CreateStandalone allocates a fresh code and creates a private chat room
// under it, unattached to any entry.
func (s *RoomService) CreateStandalone() (*models.CreateRoomResponse, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		c, err := code.Generate()
		if err != nil {
			return nil, fmt.Errorf("generating code: %w", err)
		}
		// GetOrCreate on a fresh code only collides when the code is
		// already a live room; treat that as a retry.
		if _, err := s.rooms.Get(c); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		room := s.rooms.GetOrCreate(c, s.cfg.Rooms.StandaloneRoomTTL)
		return &models.CreateRoomResponse{
			Code:      room.Code,
			ExpiresAt: room.ExpiresAt,
		}, nil
	}
	return nil, ErrCodeSpaceExhausted
}

// Info returns the live room for the code or store.ErrNotFound.
func (s *RoomService) Info(roomCode string) (*models.RoomInfoResponse, error) {
	room, err := s.rooms.Get(roomCode)
	if err != nil {
		return nil, err
	}
	return &models.RoomInfoResponse{
		Code:        room.Code,
		ExpiresAt:   room.ExpiresAt,
		ActiveUsers: room.ActiveUsers,
	}, nil
}
