package audit

import (
	"slices"
	"time"
)

// Action names an audited lifecycle transition.
type Action string

const (
	SubscriptionCreated     Action = "SUBSCRIPTION_CREATED"
	SubscriptionUpdated     Action = "SUBSCRIPTION_UPDATED"
	SubscriptionClosed      Action = "SUBSCRIPTION_CLOSED"
	SubscriptionPaused      Action = "SUBSCRIPTION_PAUSED"
	SubscriptionResumed     Action = "SUBSCRIPTION_RESUMED"
	SubscriptionDeleted     Action = "SUBSCRIPTION_DELETED"
	SubscriptionTransferred Action = "SUBSCRIPTION_TRANSFERRED"

	APIKeyCreated     Action = "APIKEY_CREATED"
	APIKeyRenewed     Action = "APIKEY_RENEWED"
	APIKeyRevoked     Action = "APIKEY_REVOKED"
	APIKeyExpired     Action = "APIKEY_EXPIRED"
	APIKeyReactivated Action = "APIKEY_REACTIVATED"
)

// ReferenceType is the kind of entity an event is filed under.
type ReferenceType string

const (
	ReferenceAPI         ReferenceType = "API"
	ReferenceApplication ReferenceType = "APPLICATION"
)

// Property keys the secondary entities touched by an event.
type Property string

const (
	PropertyAPI         Property = "API"
	PropertyAPIKey      Property = "API_KEY"
	PropertyApplication Property = "APPLICATION"
	PropertyPlan        Property = "PLAN"
)

// Event is one audit log entry. Before and After hold the entity snapshots
// around the change; either may be nil.
type Event struct {
	ID            string              `json:"id" bson:"_id"`
	EnvironmentID string              `json:"environment_id,omitempty" bson:"environment_id,omitempty"`
	UserID        string              `json:"user_id,omitempty" bson:"user_id,omitempty"`
	ReferenceType ReferenceType       `json:"reference_type" bson:"reference_type"`
	ReferenceID   string              `json:"reference_id" bson:"reference_id"`
	Action        Action              `json:"action" bson:"action"`
	Properties    map[Property]string `json:"properties,omitempty" bson:"properties,omitempty"`
	Before        any                 `json:"before,omitempty" bson:"before,omitempty"`
	After         any                 `json:"after,omitempty" bson:"after,omitempty"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
}

// EventOption fills optional event fields.
type EventOption func(*Event)

func WithReference(t ReferenceType, id string) EventOption {
	return func(e *Event) {
		e.ReferenceType = t
		e.ReferenceID = id
	}
}

func WithUser(id string) EventOption {
	return func(e *Event) { e.UserID = id }
}

func WithEnvironment(id string) EventOption {
	return func(e *Event) { e.EnvironmentID = id }
}

// WithProperty sets a property. Empty values are skipped.
func WithProperty(p Property, value string) EventOption {
	return func(e *Event) {
		if value == "" {
			return
		}
		if e.Properties == nil {
			e.Properties = make(map[Property]string, 4)
		}
		e.Properties[p] = value
	}
}

func WithChange(before, after any) EventOption {
	return func(e *Event) {
		e.Before = before
		e.After = after
	}
}

// Criteria filters stored events. Zero fields match everything.
type Criteria struct {
	ReferenceType ReferenceType
	ReferenceID   string
	Actions       []Action
	From          time.Time
	To            time.Time
	Limit         int
	Offset        int
}

// Matches reports whether e satisfies the criteria, ignoring paging.
func (c Criteria) Matches(e Event) bool {
	if c.ReferenceType != "" && e.ReferenceType != c.ReferenceType {
		return false
	}
	if c.ReferenceID != "" && e.ReferenceID != c.ReferenceID {
		return false
	}
	if len(c.Actions) > 0 && !slices.Contains(c.Actions, e.Action) {
		return false
	}
	if !c.From.IsZero() && e.CreatedAt.Before(c.From) {
		return false
	}
	if !c.To.IsZero() && e.CreatedAt.After(c.To) {
		return false
	}
	return true
}
