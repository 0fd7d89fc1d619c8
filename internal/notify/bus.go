// Package notify provides a synchronous in-process change bus. Store
// mutations publish events so live views can subscribe instead of polling
// the database.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Op identifies the kind of change that occurred.
type Op string

const (
	OpCaptured    Op = "item.captured"
	OpClustered   Op = "item.clustered"
	OpProcessed   Op = "item.processed"
	OpStatusSet   Op = "item.status"
	OpCategorized Op = "item.categorized"
	OpSurfaced    Op = "item.surfaced"
	OpClusterMade Op = "cluster.created"
)

// Event describes a single store change.
type Event struct {
	Op Op
	// ID is the item id for item.* events and the cluster id for cluster.*
	// events.
	ID string
	At time.Time
}

// Subscriber is a callback invoked when an event is published.
type Subscriber func(Event)

// Bus is a synchronous in-process event bus. It dispatches events to
// subscribers inline; a slow or panicking subscriber blocks the publisher,
// which is acceptable for a single-user tool with UI-bound subscribers.
type Bus struct {
	subscribers []Subscriber
	mu          sync.Mutex
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a callback that will be invoked on every Publish.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Publish dispatches an event to all subscribers. A nil bus is a no-op so
// operations can run without a bus wired (tests, one-shot CLI calls).
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.Lock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Any("panic", r).Str("op", string(e.Op)).Msg("subscriber panicked")
				}
			}()
			fn(e)
		}()
	}
}
