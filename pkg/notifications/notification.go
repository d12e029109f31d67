package notifications

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Hook names a lifecycle event people can be notified about.
type Hook string

const (
	HookSubscriptionNew         Hook = "SUBSCRIPTION_NEW"
	HookSubscriptionAccepted    Hook = "SUBSCRIPTION_ACCEPTED"
	HookSubscriptionRejected    Hook = "SUBSCRIPTION_REJECTED"
	HookSubscriptionClosed      Hook = "SUBSCRIPTION_CLOSED"
	HookSubscriptionPaused      Hook = "SUBSCRIPTION_PAUSED"
	HookSubscriptionResumed     Hook = "SUBSCRIPTION_RESUMED"
	HookSubscriptionTransferred Hook = "SUBSCRIPTION_TRANSFERRED"

	HookAPIKeyRenewed Hook = "APIKEY_RENEWED"
	HookAPIKeyRevoked Hook = "APIKEY_REVOKED"
	HookAPIKeyExpired Hook = "APIKEY_EXPIRED"
)

var hookTitles = map[Hook]string{
	HookSubscriptionNew:         "New subscription",
	HookSubscriptionAccepted:    "Subscription accepted",
	HookSubscriptionRejected:    "Subscription rejected",
	HookSubscriptionClosed:      "Subscription closed",
	HookSubscriptionPaused:      "Subscription paused",
	HookSubscriptionResumed:     "Subscription resumed",
	HookSubscriptionTransferred: "Subscription transferred",
	HookAPIKeyRenewed:           "API key renewed",
	HookAPIKeyRevoked:           "API key revoked",
	HookAPIKeyExpired:           "API key expiration",
}

// Title returns the human readable hook name. Unknown hooks are title cased
// from their identifier.
func (h Hook) Title() string {
	if t, ok := hookTitles[h]; ok {
		return t
	}
	words := strings.ReplaceAll(strings.ToLower(string(h)), "_", " ")
	return cases.Title(language.English).String(words)
}

// Scope is the kind of entity whose audience receives the notification.
type Scope string

const (
	ScopeAPI         Scope = "API"
	ScopeApplication Scope = "APPLICATION"
)

// Well-known Data keys.
const (
	DataAPI          = "api"
	DataApplication  = "application"
	DataPlan         = "plan"
	DataSubscription = "subscription"
	DataAPIKey       = "api_key"
	DataOwner        = "owner"
	DataReason       = "reason"
	DataExpireAt     = "expire_at"
)

// Notification is one hook occurrence addressed to the audience of an API
// or an application.
type Notification struct {
	ID          string            `json:"id"`
	Hook        Hook              `json:"hook"`
	Scope       Scope             `json:"scope"`
	ReferenceID string            `json:"reference_id"`
	Recipient   string            `json:"recipient,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
