package store

import (
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"dropchat/internal/models"
)

// shardCount trades lock granularity for footprint. Operations on different
// codes almost never contend; operations on the same code are fully
// serialized by the owning shard's mutex.
const shardCount = 32

type entryShard struct {
	mu      sync.Mutex
	entries map[string]*models.Entry
}

// EntryStore keeps shared entries in memory under their short codes. Every
// access path applies lazy expiration, so a record past its expiry is
// indistinguishable from one that never existed, regardless of whether the
// periodic sweep got to it first.
type EntryStore struct {
	clock  Clock
	shards [shardCount]*entryShard
}

func NewEntryStore(clock Clock) *EntryStore {
	s := &EntryStore{clock: clock}
	for i := range s.shards {
		s.shards[i] = &entryShard{entries: make(map[string]*models.Entry)}
	}
	return s
}

// NormalizeCode maps user input onto the store's canonical key form. Codes
// are case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *EntryStore) shard(code string) *entryShard {
	h := fnv.New32a()
	h.Write([]byte(code))
	return s.shards[h.Sum32()%shardCount]
}

func expired(expiresAt, now time.Time) bool {
	return !now.Before(expiresAt)
}

// Create stores the entry under its code with a zeroed view count. Returns
// ErrDuplicateCode when the code is already held by a live entry; an expired
// holder is evicted and the code reused.
func (s *EntryStore) Create(entry *models.Entry) error {
	code := NormalizeCode(entry.Code)
	now := s.clock.Now()

	sh := s.shard(code)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if existing, ok := sh.entries[code]; ok {
		if !expired(existing.ExpiresAt, now) {
			return ErrDuplicateCode
		}
		delete(sh.entries, code)
	}

	stored := *entry
	stored.Code = code
	stored.ViewCount = 0
	stored.CreatedAt = now
	sh.entries[code] = &stored
	return nil
}

// Read returns the live entry without counting a view or consuming a
// one-time entry. Used by password gates and room validation.
func (s *EntryStore) Read(code string) (*models.Entry, error) {
	code = NormalizeCode(code)
	now := s.clock.Now()

	sh := s.shard(code)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	entry, ok := sh.entries[code]
	if !ok {
		return nil, ErrNotFound
	}
	if expired(entry.ExpiresAt, now) {
		delete(sh.entries, code)
		return nil, ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

// ConsumeView is the read the content endpoint uses: it increments the view
// count and, for one-time entries, removes the record in the same critical
// section. Under concurrent callers exactly one observes a one-time entry.
func (s *EntryStore) ConsumeView(code string) (*models.Entry, error) {
	code = NormalizeCode(code)
	now := s.clock.Now()

	sh := s.shard(code)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	entry, ok := sh.entries[code]
	if !ok {
		return nil, ErrNotFound
	}
	if expired(entry.ExpiresAt, now) {
		delete(sh.entries, code)
		return nil, ErrNotFound
	}

	entry.ViewCount++
	copied := *entry
	if entry.OneTimeView {
		delete(sh.entries, code)
	}
	return &copied, nil
}

// Delete removes the entry if present. Idempotent; reports whether a live
// record was removed.
func (s *EntryStore) Delete(code string) bool {
	code = NormalizeCode(code)

	sh := s.shard(code)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	_, ok := sh.entries[code]
	delete(sh.entries, code)
	return ok
}

// SweepExpired removes every entry whose expiry has passed and reports how
// many were removed. Shares the expiry predicate with the lazy path.
func (s *EntryStore) SweepExpired(now time.Time) int {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for code, entry := range sh.entries {
			if expired(entry.ExpiresAt, now) {
				delete(sh.entries, code)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Len reports the number of stored records, expired or not. Used by metrics.
func (s *EntryStore) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		total += len(sh.entries)
		sh.mu.Unlock()
	}
	return total
}
