package domain

import (
	"slices"
	"time"
)

// SubscriptionStatus is the approval state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "PENDING"
	SubscriptionAccepted SubscriptionStatus = "ACCEPTED"
	SubscriptionRejected SubscriptionStatus = "REJECTED"
	SubscriptionPaused   SubscriptionStatus = "PAUSED"
	SubscriptionClosed   SubscriptionStatus = "CLOSED"
)

// IsLive reports whether the status still binds the application to its plan.
// Rejected and closed subscriptions are history.
func (s SubscriptionStatus) IsLive() bool {
	return s == SubscriptionPending || s == SubscriptionAccepted || s == SubscriptionPaused
}

// Subscription binds an application to a plan of an API.
type Subscription struct {
	ID            string             `json:"id"`
	API           string             `json:"api"`
	Plan          string             `json:"plan"`
	Application   string             `json:"application"`
	EnvironmentID string             `json:"environment_id,omitempty"`
	ClientID      string             `json:"client_id,omitempty"`
	Status        SubscriptionStatus `json:"status"`
	Request       string             `json:"request,omitempty"`
	Reason        string             `json:"reason,omitempty"`
	Metadata      map[string]string  `json:"metadata,omitempty"`

	SubscribedBy string `json:"subscribed_by,omitempty"`
	ProcessedBy  string `json:"processed_by,omitempty"`

	GeneralConditionsAccepted        *bool  `json:"general_conditions_accepted,omitempty"`
	GeneralConditionsContentPageID   string `json:"general_conditions_content_page_id,omitempty"`
	GeneralConditionsContentRevision *int   `json:"general_conditions_content_revision,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	StartingAt  *time.Time `json:"starting_at,omitempty"`
	EndingAt    *time.Time `json:"ending_at,omitempty"`
	PausedAt    *time.Time `json:"paused_at,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`

	// Populated by subscription search only when requested.
	Security PlanSecurity `json:"security,omitempty"`
	Keys     []APIKey     `json:"keys,omitempty"`
}

// SubscriptionQuery filters subscription searches. Empty fields match
// everything.
type SubscriptionQuery struct {
	APIs         []string
	Applications []string
	Plans        []string
	Statuses     []SubscriptionStatus
	// APIKey restricts the search to subscriptions bound to this key value.
	APIKey string
	// CreatedFrom and CreatedTo bound createdAt, inclusive.
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	// EndingAtAfter and EndingAtBefore bound endingAt, inclusive.
	EndingAtAfter  *time.Time
	EndingAtBefore *time.Time
}

// Matches applies the query in memory. The APIKey filter is resolved by the
// caller and is ignored here.
func (q SubscriptionQuery) Matches(s Subscription) bool {
	if len(q.APIs) > 0 && !slices.Contains(q.APIs, s.API) {
		return false
	}
	if len(q.Applications) > 0 && !slices.Contains(q.Applications, s.Application) {
		return false
	}
	if len(q.Plans) > 0 && !slices.Contains(q.Plans, s.Plan) {
		return false
	}
	if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, s.Status) {
		return false
	}
	if q.CreatedFrom != nil && s.CreatedAt.Before(*q.CreatedFrom) {
		return false
	}
	if q.CreatedTo != nil && s.CreatedAt.After(*q.CreatedTo) {
		return false
	}
	if q.EndingAtAfter != nil && (s.EndingAt == nil || s.EndingAt.Before(*q.EndingAtAfter)) {
		return false
	}
	if q.EndingAtBefore != nil && (s.EndingAt == nil || s.EndingAt.After(*q.EndingAtBefore)) {
		return false
	}
	return true
}
