// Package events provides an in-process pub/sub bus for claim transitions.
package events

import (
	"sync"

	"claimdesk/internal/models"
)

// Transition is published after every accepted status change.
type Transition struct {
	ClaimID string
	From    models.ClaimStatus
	To      models.ClaimStatus
}

// Handler is a function invoked synchronously for each published transition.
// Handlers must not block; anything slow should drain a Subscribe channel
// instead.
type Handler func(Transition)

// Bus fans transitions out to handlers and channel subscribers. Publishing
// never blocks: a subscriber whose buffer is full misses the event. The
// lifecycle engine does not depend on any subscriber succeeding.
type Bus struct {
	mu          sync.RWMutex
	handlers    []Handler
	subscribers []chan Transition
	bufferSize  int
	closed      bool
}

// Option configures the Bus.
type Option func(*Bus)

// WithBufferSize sets the subscriber channel buffer size.
func WithBufferSize(size int) Option {
	return func(b *Bus) {
		b.bufferSize = size
	}
}

// NewBus creates a transition bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{bufferSize: 64}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// On registers a handler called inline on every publish.
func (b *Bus) On(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Subscribe returns a channel receiving every published transition. The
// channel is closed when the bus closes.
func (b *Bus) Subscribe() <-chan Transition {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Transition, b.bufferSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Publish delivers the transition to all handlers and subscribers without
// blocking the caller.
func (b *Bus) Publish(t Transition) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, h := range b.handlers {
		h(t)
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- t:
		default:
			// Slow subscriber; drop rather than stall the write path.
		}
	}
}

// Close closes all subscriber channels. Publishing after Close is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
