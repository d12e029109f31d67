package subscription

import (
	"fmt"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/statemachine"
)

type event string

const (
	eventAccept  event = "accept"
	eventReject  event = "reject"
	eventPause   event = "pause"
	eventResume  event = "resume"
	eventClose   event = "close"
	eventRestore event = "restore"
)

var lifecycle = statemachine.MustNew(
	statemachine.WithTransitions(
		statemachine.Transition[domain.SubscriptionStatus, event]{From: domain.SubscriptionPending, To: domain.SubscriptionAccepted, Event: eventAccept},
		statemachine.Transition[domain.SubscriptionStatus, event]{From: domain.SubscriptionPending, To: domain.SubscriptionRejected, Event: eventReject},
		statemachine.Transition[domain.SubscriptionStatus, event]{From: domain.SubscriptionAccepted, To: domain.SubscriptionPaused, Event: eventPause},
		statemachine.Transition[domain.SubscriptionStatus, event]{From: domain.SubscriptionAccepted, To: domain.SubscriptionClosed, Event: eventClose},
		statemachine.Transition[domain.SubscriptionStatus, event]{From: domain.SubscriptionPaused, To: domain.SubscriptionAccepted, Event: eventResume},
		statemachine.Transition[domain.SubscriptionStatus, event]{From: domain.SubscriptionPaused, To: domain.SubscriptionClosed, Event: eventClose},
		statemachine.Transition[domain.SubscriptionStatus, event]{From: domain.SubscriptionClosed, To: domain.SubscriptionPending, Event: eventRestore},
		statemachine.Transition[domain.SubscriptionStatus, event]{From: domain.SubscriptionRejected, To: domain.SubscriptionPending, Event: eventRestore},
	),
)

// fire moves sub along ev or returns notAllowed tagged with the current
// state.
func fire(sub *domain.Subscription, ev event, notAllowed error) error {
	next, err := lifecycle.Fire(sub.Status, ev)
	if err != nil {
		return fmt.Errorf("%w: %s is %s", notAllowed, sub.ID, sub.Status)
	}
	sub.Status = next
	return nil
}
