package revision

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is the fallback staging backend for deployments without Redis.
// Pending revisions do not survive a restart, which is acceptable for an
// ephemeral staging area.
type MemoryStore struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time

	entries map[string]memoryEntry
}

type memoryEntry struct {
	pending   Pending
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func memoryKey(ownerID string, workoutID int64, revisionID string) string {
	return fmt.Sprintf("%s:%d:%s", ownerID, workoutID, revisionID)
}

func (s *MemoryStore) Stage(_ context.Context, pending Pending) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[memoryKey(pending.OwnerID, pending.WorkoutID, pending.ID)] = memoryEntry{
		pending:   pending,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, ownerID string, workoutID int64, revisionID string) (Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memoryKey(ownerID, workoutID, revisionID)
	entry, ok := s.entries[key]
	if !ok {
		return Pending{}, ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return Pending{}, ErrNotFound
	}
	return entry.pending, nil
}

func (s *MemoryStore) Discard(_ context.Context, ownerID string, workoutID int64, revisionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, memoryKey(ownerID, workoutID, revisionID))
	return nil
}
