package keysync

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

// EventType is the kind of key change.
type EventType string

const (
	KeyCreated EventType = "created"
	KeyUpdated EventType = "updated"
	KeyRevoked EventType = "revoked"
	KeyExpired EventType = "expired"
)

// Event describes the state of a key after a change.
type Event struct {
	Type          EventType  `json:"type"`
	KeyID         string     `json:"key_id"`
	Hash          string     `json:"hash"`
	Application   string     `json:"application"`
	Subscriptions []string   `json:"subscriptions"`
	Revoked       bool       `json:"revoked"`
	Paused        bool       `json:"paused"`
	ExpireAt      *time.Time `json:"expire_at,omitempty"`
	At            time.Time  `json:"at"`
}

// NewEvent snapshots key for publication.
func NewEvent(t EventType, key domain.APIKey, at time.Time) Event {
	return Event{
		Type:          t,
		KeyID:         key.ID,
		Hash:          key.Hash(),
		Application:   key.Application,
		Subscriptions: slices.Clone(key.Subscriptions),
		Revoked:       key.Revoked,
		Paused:        key.Paused,
		ExpireAt:      key.ExpireAt,
		At:            at,
	}
}

// Publisher emits key change events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Handler consumes received events.
type Handler func(ctx context.Context, event Event)
