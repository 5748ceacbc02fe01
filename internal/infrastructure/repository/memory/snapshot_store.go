package memory

import (
	"context"
	"sync"

	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

// SnapshotStore keeps last-known-good sheet ranges for the process lifetime.
type SnapshotStore struct {
	mu    sync.RWMutex
	items map[string]usecase.RangeSnapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{items: make(map[string]usecase.RangeSnapshot)}
}

func (s *SnapshotStore) SaveRange(_ context.Context, key string, snapshot usecase.RangeSnapshot) error {
	s.mu.Lock()
	s.items[key] = snapshot
	s.mu.Unlock()
	return nil
}

func (s *SnapshotStore) LoadRange(_ context.Context, key string) (usecase.RangeSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.items[key]
	return snapshot, ok, nil
}
