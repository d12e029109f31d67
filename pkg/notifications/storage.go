package notifications

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var ErrInvalidNotification = errors.New("notifications: invalid notification")

// Storage persists notifications.
type Storage interface {
	Create(ctx context.Context, n Notification) error
	List(ctx context.Context, scope Scope, referenceID string, opts ListOptions) ([]Notification, error)
}

// ListOptions filters and pages a listing.
type ListOptions struct {
	Hooks  []Hook
	Limit  int
	Offset int
}

// MemoryStorage keeps notifications in process.
type MemoryStorage struct {
	mu    sync.RWMutex
	items []Notification
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Create(_ context.Context, n Notification) error {
	if n.ID == "" || n.Hook == "" || n.Scope == "" || n.ReferenceID == "" {
		return ErrInvalidNotification
	}
	s.mu.Lock()
	s.items = append(s.items, n)
	s.mu.Unlock()
	return nil
}

// List returns notifications of the reference, newest first.
func (s *MemoryStorage) List(_ context.Context, scope Scope, referenceID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, 0)
	for _, n := range slices.Backward(s.items) {
		if n.Scope != scope || n.ReferenceID != referenceID {
			continue
		}
		if len(opts.Hooks) > 0 && !slices.Contains(opts.Hooks, n.Hook) {
			continue
		}
		out = append(out, n)
	}
	if opts.Offset > 0 {
		out = out[min(opts.Offset, len(out)):]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}
