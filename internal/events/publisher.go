package events

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Emitter is the narrow surface domain services depend on. Emitting never
// blocks the caller and never fails the ledger operation that produced the
// event.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// Publisher stamps events and hands them to the worker through a buffered
// channel. If the buffer is full the event is dropped and counted rather than
// stalling a ledger operation.
type Publisher struct {
	inbox   chan Event
	log     *log.Logger
	dropped func()
}

// NewPublisher builds a publisher with the given buffer size. dropped is
// invoked once per discarded event; pass nil to ignore.
func NewPublisher(buffer int, logger *log.Logger, dropped func()) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		inbox:   make(chan Event, buffer),
		log:     logger,
		dropped: dropped,
	}
}

func (p *Publisher) Emit(_ context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	select {
	case p.inbox <- event:
	default:
		if p.dropped != nil {
			p.dropped()
		}
		if p.log != nil {
			p.log.Printf("events: buffer full, dropped %s for asset %d", event.Kind, event.AssetID)
		}
	}
}

// Inbox exposes the receive side for the worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }
