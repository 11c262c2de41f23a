package ledger

import (
	"context"
	"fmt"
	"sync"

	"factorhub/internal/domain"
	"factorhub/pkg/platform/sentinel"
)

// InMemoryStore keeps assets in maps under one mutex. It intentionally favors
// clarity over performance; durable deployments use the Postgres store.
type InMemoryStore struct {
	mu            sync.RWMutex
	assets        map[uint64]domain.InvoiceAsset
	byFingerprint map[domain.Fingerprint]uint64
	nextID        uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		assets:        make(map[uint64]domain.InvoiceAsset),
		byFingerprint: make(map[domain.Fingerprint]uint64),
		nextID:        1,
	}
}

func (s *InMemoryStore) Create(_ context.Context, asset domain.InvoiceAsset) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byFingerprint[asset.Fingerprint]; exists {
		return 0, fmt.Errorf("create asset: fingerprint %s: %w", asset.Fingerprint, sentinel.ErrConflict)
	}
	asset.ID = s.nextID
	s.nextID++
	s.assets[asset.ID] = asset
	s.byFingerprint[asset.Fingerprint] = asset.ID
	return asset.ID, nil
}

func (s *InMemoryStore) Get(_ context.Context, id uint64) (domain.InvoiceAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[id]
	if !ok {
		return domain.InvoiceAsset{}, fmt.Errorf("get asset %d: %w", id, sentinel.ErrNotFound)
	}
	return asset, nil
}

func (s *InMemoryStore) Update(_ context.Context, asset domain.InvoiceAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[asset.ID]; !ok {
		return fmt.Errorf("update asset %d: %w", asset.ID, sentinel.ErrNotFound)
	}
	s.assets[asset.ID] = asset
	return nil
}
