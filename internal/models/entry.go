package models

import "time"

type EntryKind string

const (
	EntryKindText EntryKind = "text"
	EntryKindURL  EntryKind = "url"
	EntryKindFile EntryKind = "file"
)

type Entry struct {
	Code         string    `json:"code"`
	Kind         EntryKind `json:"kind"`
	Payload      string    `json:"payload"`
	FileName     string    `json:"file_name,omitempty"`
	FileSize     int64     `json:"file_size,omitempty"`
	URLTitle     string    `json:"url_title,omitempty"`
	PasswordHash string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	OneTimeView  bool      `json:"one_time_view"`
	ViewCount    int       `json:"view_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasPassword reports whether reads of this entry must pass the password gate.
func (e *Entry) HasPassword() bool {
	return e.PasswordHash != ""
}

type CreateEntryRequest struct {
	Kind        EntryKind `json:"kind"`
	Payload     string    `json:"payload"`
	FileName    string    `json:"file_name,omitempty"`
	ExpiresIn   string    `json:"expires_in"`
	OneTimeView bool      `json:"one_time_view"`
	Password    string    `json:"password,omitempty"`
}

type CreateEntryResponse struct {
	Code        string    `json:"code"`
	ExpiresAt   time.Time `json:"expires_at"`
	OneTimeView bool      `json:"one_time_view"`
	HasPassword bool      `json:"has_password"`
}

type ReadEntryResponse struct {
	Code      string    `json:"code"`
	Kind      EntryKind `json:"kind"`
	Payload   string    `json:"payload"`
	FileName  string    `json:"file_name,omitempty"`
	FileSize  int64     `json:"file_size,omitempty"`
	URLTitle  string    `json:"url_title,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UnlockRequest struct {
	Password string `json:"password"`
}
