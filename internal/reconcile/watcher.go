// Package reconcile watches the event log and matches settlement proceeds
// against what each asset was expected to produce. It is a passive monitor:
// it consumes events the worker fans out and never writes ledger state.
package reconcile

import (
	"context"
	"log"
	"sync"

	"factorhub/internal/events"
)

// MatchType classifies how a payment lined up with expectations.
type MatchType string

const (
	MatchExact     MatchType = "exact"
	MatchPartial   MatchType = "partial"
	MatchUnmatched MatchType = "unmatched"
)

// Match records the outcome of reconciling one settlement event.
type Match struct {
	AssetID    uint64
	Kind       events.Kind
	Expected   int64
	Received   int64
	Type       MatchType
	Difference int64
}

// Watcher tracks open expectations per asset. A mint sets the expectation to
// face value; a sale reconciles against the listed price and re-arms the
// expectation for eventual redemption; a redemption closes it.
type Watcher struct {
	mu       sync.RWMutex
	expected map[uint64]int64
	matches  []Match
	log      *log.Logger
}

func NewWatcher(logger *log.Logger) *Watcher {
	return &Watcher{expected: make(map[uint64]int64), log: logger}
}

// Handle implements events.Handler.
func (w *Watcher) Handle(_ context.Context, event events.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch event.Kind {
	case events.KindMinted:
		w.expected[event.AssetID] = event.FaceValue
	case events.KindSold:
		w.record(event, event.PricePaid, event.PricePaid)
	case events.KindRedeemed:
		expected, ok := w.expected[event.AssetID]
		if !ok {
			w.record(event, 0, event.Payout)
			return
		}
		w.record(event, expected, event.Payout)
		delete(w.expected, event.AssetID)
	}
}

func (w *Watcher) record(event events.Event, expected, received int64) {
	match := Match{
		AssetID:    event.AssetID,
		Kind:       event.Kind,
		Expected:   expected,
		Received:   received,
		Difference: expected - received,
	}
	switch {
	case expected == 0:
		match.Type = MatchUnmatched
	case expected == received:
		match.Type = MatchExact
	default:
		match.Type = MatchPartial
	}
	w.matches = append(w.matches, match)
	if w.log != nil && match.Type != MatchExact {
		w.log.Printf("reconcile: asset %d %s %s: expected %d received %d",
			match.AssetID, match.Kind, match.Type, expected, received)
	}
}

// Matches returns a copy of all recorded reconciliation outcomes.
func (w *Watcher) Matches() []Match {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Match, len(w.matches))
	copy(out, w.matches)
	return out
}

// Pending returns asset IDs with an open settlement expectation.
func (w *Watcher) Pending() []uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]uint64, 0, len(w.expected))
	for id := range w.expected {
		out = append(out, id)
	}
	return out
}
