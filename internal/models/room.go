package models

import "time"

type Room struct {
	Code        string    `json:"code"`
	ActiveUsers int       `json:"active_users"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type Message struct {
	ID          string    `json:"id"`
	AuthorToken string    `json:"author_token"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
}

type CreateRoomResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RoomInfoResponse struct {
	Code        string    `json:"code"`
	ExpiresAt   time.Time `json:"expires_at"`
	ActiveUsers int       `json:"active_users"`
}
