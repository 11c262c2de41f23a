package registry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"factorhub/internal/domain"
)

// CacheTTL bounds how long a registration lookup may be served from cache.
// Records are immutable once written, so the TTL exists for eviction, not
// freshness.
var CacheTTL = 5 * time.Minute

// CachedStore is a cache-aside wrapper around a Store. Redis failures fall
// through to the inner store; the cache is an accelerator, never a source of
// truth.
type CachedStore struct {
	inner Store
	cache *redis.Client
}

func NewCachedStore(inner Store, cache *redis.Client) *CachedStore {
	return &CachedStore{inner: inner, cache: cache}
}

func cacheKey(fingerprint domain.Fingerprint) string {
	return "registry:" + string(fingerprint)
}

func (s *CachedStore) Save(ctx context.Context, record Record) error {
	if err := s.inner.Save(ctx, record); err != nil {
		return err
	}
	if payload, err := json.Marshal(record); err == nil {
		s.cache.Set(ctx, cacheKey(record.Fingerprint), payload, CacheTTL)
	}
	return nil
}

func (s *CachedStore) Find(ctx context.Context, fingerprint domain.Fingerprint) (Record, error) {
	if payload, err := s.cache.Get(ctx, cacheKey(fingerprint)).Bytes(); err == nil {
		var record Record
		if err := json.Unmarshal(payload, &record); err == nil {
			return record, nil
		}
	}

	record, err := s.inner.Find(ctx, fingerprint)
	if err != nil {
		return Record{}, err
	}
	if payload, err := json.Marshal(record); err == nil {
		s.cache.Set(ctx, cacheKey(fingerprint), payload, CacheTTL)
	}
	return record, nil
}
