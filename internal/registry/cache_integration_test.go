//go:build integration

package registry

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factorhub/internal/domain"
	"factorhub/pkg/testutil/containers"
)

// countingStore counts reads against the inner store so cache hits are
// observable.
type countingStore struct {
	Store
	finds atomic.Int64
}

func (s *countingStore) Find(ctx context.Context, fingerprint domain.Fingerprint) (Record, error) {
	s.finds.Add(1)
	return s.Store.Find(ctx, fingerprint)
}

func TestCachedStore(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)

	fp := ComputeFingerprint([]byte("cached document"))
	record := Record{
		Fingerprint:  fp,
		RegisteredAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Registrar:    "supplier-acme",
	}

	t.Run("save writes through to redis", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		inner := &countingStore{Store: NewInMemoryStore()}
		store := NewCachedStore(inner, rc.Client)

		require.NoError(t, store.Save(ctx, record))

		exists, err := rc.Client.Exists(ctx, "registry:"+string(fp)).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)

		got, err := store.Find(ctx, fp)
		require.NoError(t, err)
		assert.Equal(t, record.Registrar, got.Registrar)
		assert.Equal(t, int64(0), inner.finds.Load(), "find after save must hit the cache")
	})

	t.Run("miss falls through and backfills", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		inner := &countingStore{Store: NewInMemoryStore()}
		require.NoError(t, inner.Store.Save(ctx, record))
		store := NewCachedStore(inner, rc.Client)

		_, err := store.Find(ctx, fp)
		require.NoError(t, err)
		assert.Equal(t, int64(1), inner.finds.Load())

		_, err = store.Find(ctx, fp)
		require.NoError(t, err)
		assert.Equal(t, int64(1), inner.finds.Load(), "second find must be served from cache")
	})

	t.Run("unknown fingerprint stays an error", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		store := NewCachedStore(NewInMemoryStore(), rc.Client)

		_, err := store.Find(ctx, ComputeFingerprint([]byte("never saved")))
		assert.Error(t, err)
	})
}
