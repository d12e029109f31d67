package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/apimgmt/pkg/logger"
)

// Manager stores notifications and delivers them.
type Manager struct {
	storage   Storage
	deliverer Deliverer
	logger    *slog.Logger
	now       func() time.Time
}

type ManagerOption func(*Manager)

func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a manager. A nil deliverer stores without delivering.
func NewManager(storage Storage, deliverer Deliverer, opts ...ManagerOption) *Manager {
	if storage == nil {
		panic("notifications: storage is required")
	}
	if deliverer == nil {
		deliverer = NoOpDeliverer{}
	}
	m := &Manager{
		storage:   storage,
		deliverer: deliverer,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Notify stores n and attempts delivery. Only a storage failure is
// returned.
func (m *Manager) Notify(ctx context.Context, n Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = m.now()
	}

	if err := m.storage.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	if err := m.deliverer.Deliver(ctx, n); err != nil {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "notification stored but not delivered",
			slog.String("notification_id", n.ID),
			slog.String("hook", string(n.Hook)),
			slog.String("reference_id", n.ReferenceID),
			logger.Error(err),
		)
	}
	return nil
}

// List returns the stored notifications of a reference.
func (m *Manager) List(ctx context.Context, scope Scope, referenceID string, opts ListOptions) ([]Notification, error) {
	return m.storage.List(ctx, scope, referenceID, opts)
}
