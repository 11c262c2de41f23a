package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factorhub/internal/events"
)

func TestWatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("redemption at face value matches exactly", func(t *testing.T) {
		w := NewWatcher(nil)
		w.Handle(ctx, events.Event{Kind: events.KindMinted, AssetID: 1, FaceValue: 10000})
		w.Handle(ctx, events.Event{Kind: events.KindRedeemed, AssetID: 1, Payout: 10000})

		matches := w.Matches()
		require.Len(t, matches, 1)
		assert.Equal(t, MatchExact, matches[0].Type)
		assert.Equal(t, int64(0), matches[0].Difference)
		assert.Empty(t, w.Pending())
	})

	t.Run("short payout is partial", func(t *testing.T) {
		w := NewWatcher(nil)
		w.Handle(ctx, events.Event{Kind: events.KindMinted, AssetID: 1, FaceValue: 10000})
		w.Handle(ctx, events.Event{Kind: events.KindRedeemed, AssetID: 1, Payout: 9000})

		matches := w.Matches()
		require.Len(t, matches, 1)
		assert.Equal(t, MatchPartial, matches[0].Type)
		assert.Equal(t, int64(1000), matches[0].Difference)
	})

	t.Run("redemption without a mint is unmatched", func(t *testing.T) {
		w := NewWatcher(nil)
		w.Handle(ctx, events.Event{Kind: events.KindRedeemed, AssetID: 3, Payout: 5000})

		matches := w.Matches()
		require.Len(t, matches, 1)
		assert.Equal(t, MatchUnmatched, matches[0].Type)
	})

	t.Run("sale reconciles and keeps the expectation open", func(t *testing.T) {
		w := NewWatcher(nil)
		w.Handle(ctx, events.Event{Kind: events.KindMinted, AssetID: 1, FaceValue: 10000})
		w.Handle(ctx, events.Event{Kind: events.KindSold, AssetID: 1, PricePaid: 9500})

		matches := w.Matches()
		require.Len(t, matches, 1)
		assert.Equal(t, MatchExact, matches[0].Type)
		assert.Equal(t, []uint64{1}, w.Pending(), "sale must not close the settlement expectation")
	})

	t.Run("listing events are ignored", func(t *testing.T) {
		w := NewWatcher(nil)
		w.Handle(ctx, events.Event{Kind: events.KindMinted, AssetID: 1, FaceValue: 10000})
		w.Handle(ctx, events.Event{Kind: events.KindListed, AssetID: 1, Price: 9500})

		assert.Empty(t, w.Matches())
		assert.Equal(t, []uint64{1}, w.Pending())
	})

	t.Run("tracks multiple assets independently", func(t *testing.T) {
		w := NewWatcher(nil)
		w.Handle(ctx, events.Event{Kind: events.KindMinted, AssetID: 1, FaceValue: 10000})
		w.Handle(ctx, events.Event{Kind: events.KindMinted, AssetID: 2, FaceValue: 20000})
		w.Handle(ctx, events.Event{Kind: events.KindRedeemed, AssetID: 2, Payout: 20000})

		assert.Equal(t, []uint64{1}, w.Pending())
	})
}
