// Package policy holds the side-effect free predicates the lifecycle
// managers consult before mutating subscriptions and keys.
package policy

import (
	"slices"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

// CheckPlanSubscribable rejects plans whose status or security forbid new
// subscriptions. Checks run in a fixed order so the first failing rule wins.
func CheckPlanSubscribable(plan domain.Plan) error {
	switch plan.Status {
	case domain.PlanDeprecated:
		return domain.ErrPlanNotSubscribable
	case domain.PlanClosed:
		return domain.ErrPlanAlreadyClosed
	case domain.PlanStaging:
		return domain.ErrPlanNotYetPublished
	}
	if plan.Security == domain.SecurityKeyLess {
		return domain.ErrPlanNotSubscribable
	}
	return nil
}

// IsRestricted reports whether the actor is kept out of the plan by its
// excluded groups. Environment admins are never restricted.
func IsRestricted(plan domain.Plan, actor domain.Actor, environmentAdmin bool) bool {
	if len(plan.ExcludedGroups) == 0 || environmentAdmin {
		return false
	}
	for _, group := range actor.Groups {
		if slices.Contains(plan.ExcludedGroups, group) {
			return true
		}
	}
	return false
}

// RequiresGeneralConditions reports whether subscribers must accept a
// content page before subscribing.
func RequiresGeneralConditions(plan domain.Plan) bool {
	return plan.GeneralConditions != ""
}

// CheckGeneralConditions validates the acceptance record sent with a
// subscription request against the current page revision.
func CheckGeneralConditions(accepted *bool, revision *int, page domain.ContentPage) error {
	if (accepted != nil && !*accepted) || revision == nil {
		return domain.ErrPlanGeneralConditionAccepted
	}
	if *revision != page.Revision {
		return domain.ErrPlanGeneralConditionRevision
	}
	return nil
}

// ClientID returns the OAuth client id token based plans bind to. SIMPLE
// applications declare it directly, the others through their OAuth client.
func ClientID(app domain.Application) string {
	if app.Type == domain.ApplicationSimple {
		return app.ClientID
	}
	return app.OAuthClientID
}

// CheckApplicationSubscribable rejects archived applications.
func CheckApplicationSubscribable(app domain.Application) error {
	if app.Status == domain.ApplicationArchived {
		return domain.ErrApplicationArchived
	}
	return nil
}

// CheckExistingSubscriptions validates a new subscription of app to plan
// against the application's other subscriptions on the same API. plans
// resolves the plan of each existing subscription.
func CheckExistingSubscriptions(plan domain.Plan, app domain.Application, existing []domain.Subscription, plans map[string]domain.Plan) error {
	live := make([]domain.Subscription, 0, len(existing))
	for _, sub := range existing {
		if sub.Status.IsLive() {
			live = append(live, sub)
		}
	}

	for _, sub := range live {
		if sub.Plan == plan.ID {
			return domain.ErrPlanAlreadySubscribed
		}
	}

	if plan.Security.IsTokenBased() {
		for _, sub := range live {
			if other, ok := plans[sub.Plan]; ok && other.Security.IsTokenBased() {
				return domain.ErrPlanOAuth2OrJWTAlreadySubscribed
			}
		}
	}

	if plan.Security == domain.SecurityAPIKey && app.HasSharedAPIKey() {
		for _, sub := range live {
			if other, ok := plans[sub.Plan]; ok && other.Security == domain.SecurityAPIKey {
				return domain.ErrPlanNotSubscribableWithSharedAPIKey
			}
		}
	}

	return nil
}

// CheckClientID rejects token based plans on applications without a client id.
func CheckClientID(plan domain.Plan, app domain.Application) (string, error) {
	if !plan.Security.IsTokenBased() {
		return "", nil
	}
	clientID := ClientID(app)
	if clientID == "" {
		return "", domain.ErrPlanNotSubscribable
	}
	return clientID, nil
}

// ResolveAPIKeyMode settles the key mode of an application that has not
// chosen one yet. existing is the number of live API key subscriptions the
// application already holds. It returns false when the mode must stay
// unspecified.
func ResolveAPIKeyMode(current, requested domain.APIKeyMode, existing int) (domain.APIKeyMode, bool) {
	if current != domain.APIKeyModeUnspecified && current != "" {
		return current, false
	}
	if requested == domain.APIKeyModeUnspecified {
		requested = ""
	}

	switch {
	case requested == domain.APIKeyModeShared && existing == 0:
		return current, false
	case requested == domain.APIKeyModeShared && existing > 1:
		return domain.APIKeyModeExclusive, true
	case requested == "" && existing > 0:
		return domain.APIKeyModeExclusive, true
	case requested != "":
		return requested, true
	}
	return current, false
}

// CheckTransfer validates moving a subscription from its current plan to
// target.
func CheckTransfer(current, target domain.Plan) error {
	if target.API != current.API ||
		target.Status != domain.PlanPublished ||
		target.Security != current.Security ||
		RequiresGeneralConditions(target) {
		return domain.ErrTransferNotAllowed
	}
	return nil
}

// CanReactivateWith reports whether a key bound to the subscription may be
// reactivated.
func CanReactivateWith(sub domain.Subscription) bool {
	return sub.Status == domain.SubscriptionAccepted || sub.Status == domain.SubscriptionPaused
}
