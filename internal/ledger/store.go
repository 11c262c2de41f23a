// Package ledger owns the canonical invoice-asset table: minting, lookups,
// and the serialized read-modify-write boundary every marketplace mutation
// goes through.
package ledger

import (
	"context"

	"factorhub/internal/domain"
)

// Store persists assets. Implementations must allocate IDs densely from 1 and
// enforce fingerprint uniqueness atomically with the insert; Create returns
// sentinel.ErrConflict when the fingerprint is already tokenized.
type Store interface {
	// Create assigns the next ID, persists the asset, and returns the ID.
	Create(ctx context.Context, asset domain.InvoiceAsset) (uint64, error)
	// Get returns a snapshot of the asset or sentinel.ErrNotFound.
	Get(ctx context.Context, id uint64) (domain.InvoiceAsset, error)
	// Update overwrites the mutable fields of an existing asset.
	Update(ctx context.Context, asset domain.InvoiceAsset) error
}
