package idempotency

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryKey struct {
	subjectID uuid.UUID
	operation string
}

// MemoryStore is an in-process store for tests and single-instance use.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[memoryKey]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[memoryKey]struct{})}
}

func (s *MemoryStore) IsProcessed(_ context.Context, subjectID uuid.UUID, operation string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[memoryKey{subjectID: subjectID, operation: operation}]
	return ok, nil
}

func (s *MemoryStore) MarkProcessed(_ context.Context, subjectID uuid.UUID, operation string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memoryKey{subjectID: subjectID, operation: operation}
	if _, ok := s.seen[key]; ok {
		return false, nil
	}
	s.seen[key] = struct{}{}
	return true, nil
}

var _ Store = (*MemoryStore)(nil)
