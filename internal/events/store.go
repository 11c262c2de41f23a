package events

import "context"

// Store persists the notification log. Implementations must be append-only;
// nothing in the system rewrites history.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAsset(ctx context.Context, assetID uint64) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
