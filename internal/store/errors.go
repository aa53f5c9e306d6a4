// Package store holds the in-memory, TTL-bearing keyed stores for entries
// and chat rooms. All state lives in process memory; nothing survives a
// restart. Callers match errors with errors.Is.
package store

import "errors"

var (
	// ErrNotFound is returned for codes that are absent or expired. The two
	// cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateCode is returned by Create when the code is already held
	// by a live entry. Callers retry with a fresh code.
	ErrDuplicateCode = errors.New("duplicate code")

	// ErrRoomNotFound is returned when appending to a room that is absent
	// or expired mid-session.
	ErrRoomNotFound = errors.New("room not found")
)
