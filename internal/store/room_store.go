package store

import (
	"hash/fnv"
	"sync"
	"time"

	"dropchat/internal/models"

	"github.com/google/uuid"
)

type roomRecord struct {
	room     models.Room
	messages []models.Message
}

type roomShard struct {
	mu    sync.Mutex
	rooms map[string]*roomRecord
}

// RoomStore keeps chat rooms and their ordered message logs in memory. A
// room and its log are one record, so deletion can never leave one behind
// without the other. Room lifetime is fixed at creation; activity does not
// extend it.
type RoomStore struct {
	clock  Clock
	shards [shardCount]*roomShard
}

func NewRoomStore(clock Clock) *RoomStore {
	s := &RoomStore{clock: clock}
	for i := range s.shards {
		s.shards[i] = &roomShard{rooms: make(map[string]*roomRecord)}
	}
	return s
}

func (s *RoomStore) shard(code string) *roomShard {
	h := fnv.New32a()
	h.Write([]byte(code))
	return s.shards[h.Sum32()%shardCount]
}

// GetOrCreate returns the live room for the code, creating it with zero
// active users and the given TTL when absent or expired.
func (s *RoomStore) GetOrCreate(code string, ttl time.Duration) *models.Room {
	code = NormalizeCode(code)
	now := s.clock.Now()

	sh := s.shard(code)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.rooms[code]
	if ok && !expired(rec.room.ExpiresAt, now) {
		copied := rec.room
		return &copied
	}

	rec = &roomRecord{
		room: models.Room{
			Code:      code,
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
		},
	}
	sh.rooms[code] = rec
	copied := rec.room
	return &copied
}

// Get returns the live room without creating one.
func (s *RoomStore) Get(code string) (*models.Room, error) {
	code = NormalizeCode(code)
	now := s.clock.Now()

	sh := s.shard(code)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.rooms[code]
	if !ok {
		return nil, ErrNotFound
	}
	if expired(rec.room.ExpiresAt, now) {
		delete(sh.rooms, code)
		return nil, ErrNotFound
	}
	copied := rec.room
	return &copied, nil
}

// Touch records the current membership count. It never moves ExpiresAt.
func (s *RoomStore) Touch(code string, activeUsers int) error {
	code = NormalizeCode(code)
	now := s.clock.Now()

	sh := s.shard(code)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.rooms[code]
	if !ok || expired(rec.room.ExpiresAt, now) {
		return ErrRoomNotFound
	}
	rec.room.ActiveUsers = activeUsers
	return nil
}

// AppendMessage assigns an id and timestamp and appends to the room's log.
// Message order in the log is the order of AppendMessage calls.
func (s *RoomStore) AppendMessage(code, authorToken, text string) (*models.Message, error) {
	code = NormalizeCode(code)
	now := s.clock.Now()

	sh := s.shard(code)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.rooms[code]
	if !ok || expired(rec.room.ExpiresAt, now) {
		if ok {
			delete(sh.rooms, code)
		}
		return nil, ErrRoomNotFound
	}

	msg := models.Message{
		ID:          uuid.NewString(),
		AuthorToken: authorToken,
		Text:        text,
		Timestamp:   now,
	}
	rec.messages = append(rec.messages, msg)
	return &msg, nil
}

// History returns the room's messages in arrival order. Absent or expired
// rooms yield an empty slice.
func (s *RoomStore) History(code string) []models.Message {
	code = NormalizeCode(code)
	now := s.clock.Now()

	sh := s.shard(code)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.rooms[code]
	if !ok || expired(rec.room.ExpiresAt, now) {
		return nil
	}
	out := make([]models.Message, len(rec.messages))
	copy(out, rec.messages)
	return out
}

// Delete removes the room together with its message log.
func (s *RoomStore) Delete(code string) {
	code = NormalizeCode(code)

	sh := s.shard(code)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.rooms, code)
}

// SweepExpired removes every room past its expiry and reports the count.
func (s *RoomStore) SweepExpired(now time.Time) int {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for code, rec := range sh.rooms {
			if expired(rec.room.ExpiresAt, now) {
				delete(sh.rooms, code)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Len reports the number of stored rooms. Used by metrics.
func (s *RoomStore) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		total += len(sh.rooms)
		sh.mu.Unlock()
	}
	return total
}
