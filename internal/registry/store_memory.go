package registry

import (
	"context"
	"fmt"
	"sync"

	"factorhub/internal/domain"
	"factorhub/pkg/platform/sentinel"
)

// InMemoryStore keeps registrations in a map; durable deployments front it
// with the Redis cache or replace it outright.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[domain.Fingerprint]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[domain.Fingerprint]Record)}
}

func (s *InMemoryStore) Save(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.Fingerprint]; exists {
		return fmt.Errorf("save registration %s: %w", record.Fingerprint, sentinel.ErrConflict)
	}
	s.records[record.Fingerprint] = record
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, fingerprint domain.Fingerprint) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[fingerprint]
	if !ok {
		return Record{}, fmt.Errorf("find registration %s: %w", fingerprint, sentinel.ErrNotFound)
	}
	return record, nil
}
