package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Storage persists and queries audit events.
type Storage interface {
	Store(ctx context.Context, event Event) error
	Query(ctx context.Context, criteria Criteria) ([]Event, error)
}

// Logger records audit events.
type Logger interface {
	Log(ctx context.Context, action Action, opts ...EventOption) error
}

// Reader queries recorded events.
type Reader interface {
	Find(ctx context.Context, criteria Criteria) ([]Event, error)
}

type logger struct {
	storage Storage
	now     func() time.Time
	userID  func(context.Context) (string, bool)
}

// Option configures the logger.
type Option func(*logger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *logger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithUserIDExtractor fills Event.UserID from context when an option did
// not set it.
func WithUserIDExtractor(fn func(context.Context) (string, bool)) Option {
	return func(l *logger) { l.userID = fn }
}

// NewLogger creates a logger writing to storage.
func NewLogger(storage Storage, opts ...Option) Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	l := &logger{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *logger) Log(ctx context.Context, action Action, opts ...EventOption) error {
	event := Event{
		ID:        uuid.NewString(),
		Action:    action,
		CreatedAt: l.now(),
	}
	for _, opt := range opts {
		opt(&event)
	}
	if event.UserID == "" && l.userID != nil {
		if id, ok := l.userID(ctx); ok {
			event.UserID = id
		}
	}

	if event.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEventValidation)
	}
	if event.ReferenceType == "" || event.ReferenceID == "" {
		return fmt.Errorf("%w: reference is required", ErrEventValidation)
	}

	if err := l.storage.Store(ctx, event); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageFailed, err)
	}
	return nil
}

type reader struct {
	storage Storage
}

// NewReader creates a reader over storage.
func NewReader(storage Storage) Reader {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	return &reader{storage: storage}
}

func (r *reader) Find(ctx context.Context, criteria Criteria) ([]Event, error) {
	return r.storage.Query(ctx, criteria)
}
