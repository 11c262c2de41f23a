package events

import (
	"context"
	"log"
)

// Sink receives events after they are persisted, e.g. a Kafka topic. Sinks are
// best-effort: a sink failure is logged, never propagated back to the ledger.
type Sink interface {
	Produce(ctx context.Context, event Event) error
}

// Handler observes persisted events in-process, e.g. the reconciliation
// watcher.
type Handler interface {
	Handle(ctx context.Context, event Event)
}

// Worker drains the publisher inbox and fans each event out to the store, the
// optional sink, and any registered handlers.
type Worker struct {
	store    Store
	inbox    <-chan Event
	sink     Sink
	handlers []Handler
	log      *log.Logger
}

func NewWorker(store Store, inbox <-chan Event, sink Sink, logger *log.Logger, handlers ...Handler) *Worker {
	return &Worker{store: store, inbox: inbox, sink: sink, handlers: handlers, log: logger}
}

// Run processes events until ctx is cancelled. Store failures are logged and
// the worker keeps going; the log is observability, not the system of record
// for ledger state.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil && w.log != nil {
				w.log.Printf("events: append %s for asset %d: %v", event.Kind, event.AssetID, err)
			}
			if w.sink != nil {
				if err := w.sink.Produce(ctx, event); err != nil && w.log != nil {
					w.log.Printf("events: sink %s for asset %d: %v", event.Kind, event.AssetID, err)
				}
			}
			for _, h := range w.handlers {
				h.Handle(ctx, event)
			}
		}
	}
}
