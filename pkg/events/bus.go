package events

import (
	"context"
	"sync"
)

// Bus is an in-process publish point. Subscribers receive event names on
// buffered channels; a subscriber that has fallen behind misses events
// instead of blocking the emitter.
type Bus struct {
	mu   sync.RWMutex
	subs []chan string
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a channel carrying event names. The channel is never
// closed; drop the reference when done.
func (b *Bus) Subscribe() <-chan string {
	ch := make(chan string, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Emit implements Emitter with non-blocking delivery to every subscriber.
func (b *Bus) Emit(_ context.Context, event string) {
	eventsEmitted.WithLabelValues(event).Inc()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
