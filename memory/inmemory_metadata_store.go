package memory

import (
	"context"
	"sync"
	"time"

	"github.com/agentflow/memoryengine/types"
)

// InMemoryMetadataStore is the reference MetadataStore: a mutex-guarded map
// keyed by item id, grouped implicitly by owner via linear scans. It is
// intended for tests and local development, not production scale.
type InMemoryMetadataStore struct {
	mu    sync.RWMutex
	items map[string]*types.MemoryItem
}

// NewInMemoryMetadataStore returns an empty store.
func NewInMemoryMetadataStore() *InMemoryMetadataStore {
	return &InMemoryMetadataStore{items: make(map[string]*types.MemoryItem)}
}

func (s *InMemoryMetadataStore) Upsert(_ context.Context, item *types.MemoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item.Clone()
	return nil
}

func (s *InMemoryMetadataStore) Get(_ context.Context, id string) (*types.MemoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return item.Clone(), nil
}

func (s *InMemoryMetadataStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *InMemoryMetadataStore) ListByOwner(_ context.Context, owner string) ([]*types.MemoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*types.MemoryItem
	for _, item := range s.items {
		if item.Owner == owner {
			out = append(out, item.Clone())
		}
	}
	return out, nil
}

func (s *InMemoryMetadataStore) ListByOwnerAndType(_ context.Context, owner string, memTypes []types.MemoryType) ([]*types.MemoryItem, error) {
	allowed := make(map[types.MemoryType]bool, len(memTypes))
	for _, t := range memTypes {
		allowed[t] = true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*types.MemoryItem
	for _, item := range s.items {
		if item.Owner != owner {
			continue
		}
		if len(allowed) > 0 && !allowed[item.Type] {
			continue
		}
		out = append(out, item.Clone())
	}
	return out, nil
}

func (s *InMemoryMetadataStore) UpdateAccess(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil
	}
	item.LastAccessed = &at
	return nil
}
