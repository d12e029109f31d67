package audit

import (
	"context"
	"slices"
	"sync"
)

// MemoryStorage keeps events in insertion order.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Store(_ context.Context, event Event) error {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	return nil
}

// Query returns matching events, newest first.
func (s *MemoryStorage) Query(_ context.Context, c Criteria) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, 0)
	for _, e := range slices.Backward(s.events) {
		if c.Matches(e) {
			out = append(out, e)
		}
	}
	if c.Offset > 0 {
		if c.Offset >= len(out) {
			return []Event{}, nil
		}
		out = out[c.Offset:]
	}
	if c.Limit > 0 && len(out) > c.Limit {
		out = out[:c.Limit]
	}
	return out, nil
}

// Events returns a copy of everything stored.
func (s *MemoryStorage) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}
