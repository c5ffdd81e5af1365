// Package bus fans chat events out from the store and the response
// orchestrator to whoever is rendering (the TUI event loop, tests).
package bus

import (
	"context"
	"sync"
)

const defaultBufferSize = 100

// Bus is a process-wide event fan-out. Publishing never blocks: slow
// subscribers drop events rather than stalling the animation timeline.
type Bus struct {
	subscribers map[uint64]chan Event
	nextID      uint64

	done      chan struct{}
	closeOnce sync.Once

	mu sync.RWMutex
}

// New returns an open bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[uint64]chan Event),
		done:        make(chan struct{}),
	}
}

// Publish delivers the event to every subscriber. Returns false once the
// bus is closed or the context is done.
func (b *Bus) Publish(ctx context.Context, event Event) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-ctx.Done():
		return false
	case <-b.done:
		return false
	default:
	}

	b.mu.RLock()
	subs := make([]chan Event, 0, len(b.subscribers))
	for _, ch := range b.subscribers {
		subs = append(subs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			// Drop instead of blocking the publisher on slow subscribers.
		}
	}

	return true
}

// Subscribe registers a buffered event channel. The returned cancel func
// is idempotent; the channel also closes when the context ends or the bus
// shuts down.
func (b *Bus) Subscribe(ctx context.Context, buffer int) (<-chan Event, func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	if buffer <= 0 {
		buffer = defaultBufferSize
	}

	ch := make(chan Event, buffer)

	b.mu.Lock()
	select {
	case <-b.done:
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}

	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			if sub, ok := b.subscribers[id]; ok {
				delete(b.subscribers, id)
				close(sub)
			}
			b.mu.Unlock()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-b.done:
			unsubscribe()
		}
	}()

	return ch, unsubscribe
}

// Close shuts the bus down and closes every subscriber channel.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.done)

		b.mu.Lock()
		for id, ch := range b.subscribers {
			close(ch)
			delete(b.subscribers, id)
		}
		b.mu.Unlock()
	})
}
