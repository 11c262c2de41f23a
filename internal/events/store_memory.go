package events

import (
	"context"
	"sync"
)

// InMemoryStore keeps the event log in process memory. It backs tests and
// single-node deployments; durable setups use the Postgres store.
type InMemoryStore struct {
	mu     sync.RWMutex
	log    []Event
	byAsst map[uint64][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byAsst: make(map[uint64][]int)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, event)
	s.byAsst[event.AssetID] = append(s.byAsst[event.AssetID], len(s.log)-1)
	return nil
}

func (s *InMemoryStore) ListByAsset(_ context.Context, assetID uint64) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idxs := s.byAsst[assetID]
	out := make([]Event, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.log[i])
	}
	return out, nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.log) {
		limit = len(s.log)
	}
	out := make([]Event, limit)
	copy(out, s.log[len(s.log)-limit:])
	return out, nil
}
