package keysync

import (
	"context"
	"sync"
)

// MemoryBus delivers events synchronously to in-process handlers and keeps
// a copy of everything published.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers []Handler
	events   []Event
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

// Subscribe registers h for future events.
func (b *MemoryBus) Subscribe(h Handler) {
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.Lock()
	b.events = append(b.events, event)
	handlers := append([]Handler(nil), b.handlers...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(ctx, event)
	}
	return nil
}

// Events returns every published event in order.
func (b *MemoryBus) Events() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Event(nil), b.events...)
}
