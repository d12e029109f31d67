package domain

import (
	"crypto/md5"
	"encoding/hex"
	"slices"
	"time"
)

// APIKey is a credential bound to one or more subscriptions of an
// application. Keys of applications in shared mode carry every subscription
// of the application; other keys carry exactly one.
type APIKey struct {
	ID            string     `json:"id"`
	Key           string     `json:"key"`
	Application   string     `json:"application"`
	Subscriptions []string   `json:"subscriptions"`
	EnvironmentID string     `json:"environment_id,omitempty"`
	Revoked       bool       `json:"revoked"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
	Paused        bool       `json:"paused"`
	ExpireAt      *time.Time `json:"expire_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsExpired reports whether the key expiry is in the past relative to now.
func (k APIKey) IsExpired(now time.Time) bool {
	return k.ExpireAt != nil && now.After(*k.ExpireAt)
}

// IsActive reports whether the key is neither revoked nor expired.
func (k APIKey) IsActive(now time.Time) bool {
	return !k.Revoked && !k.IsExpired(now)
}

// Hash returns the hex encoded md5 digest of the key value, as published to
// gateways that must not see the clear value.
func (k APIKey) Hash() string {
	sum := md5.Sum([]byte(k.Key))
	return hex.EncodeToString(sum[:])
}

// HasSubscription reports whether the key is bound to the subscription.
func (k APIKey) HasSubscription(id string) bool {
	return slices.Contains(k.Subscriptions, id)
}

// AddSubscription binds the key to a subscription once.
// It returns false if the key was already bound.
func (k *APIKey) AddSubscription(id string) bool {
	if k.HasSubscription(id) {
		return false
	}
	k.Subscriptions = append(k.Subscriptions, id)
	return true
}

// APIKeyQuery filters key searches.
type APIKeyQuery struct {
	IncludeRevoked bool
	Subscriptions  []string
	EnvironmentID  string
	// From and To bound updatedAt, inclusive.
	From *time.Time
	To   *time.Time
	// ExpireAfter and ExpireBefore bound expireAt, inclusive.
	ExpireAfter  *time.Time
	ExpireBefore *time.Time
}

// Matches applies the query in memory.
func (q APIKeyQuery) Matches(k APIKey) bool {
	if !q.IncludeRevoked && k.Revoked {
		return false
	}
	if q.EnvironmentID != "" && k.EnvironmentID != q.EnvironmentID {
		return false
	}
	if len(q.Subscriptions) > 0 {
		found := false
		for _, id := range q.Subscriptions {
			if k.HasSubscription(id) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.From != nil && k.UpdatedAt.Before(*q.From) {
		return false
	}
	if q.To != nil && k.UpdatedAt.After(*q.To) {
		return false
	}
	if q.ExpireAfter != nil && (k.ExpireAt == nil || k.ExpireAt.Before(*q.ExpireAfter)) {
		return false
	}
	if q.ExpireBefore != nil && (k.ExpireAt == nil || k.ExpireAt.After(*q.ExpireBefore)) {
		return false
	}
	return true
}
