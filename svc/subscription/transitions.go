package subscription

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/apimgmt/pkg/audit"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/metrics"
	"github.com/dmitrymomot/apimgmt/pkg/notifications"
	"github.com/dmitrymomot/apimgmt/pkg/policy"
)

// Close ends an accepted or paused subscription and revokes its keys.
// Keys shared with other subscriptions are only touched. A pending
// subscription is rejected instead.
func (s *service) Close(ctx context.Context, actor domain.Actor, id string) (domain.Subscription, error) {
	ctx = domain.WithActor(ctx, actor)

	sub, err := s.FindByID(ctx, id)
	if err != nil {
		return domain.Subscription{}, err
	}

	if sub.Status == domain.SubscriptionPending {
		plan, err := s.plan(ctx, sub.Plan)
		if err != nil {
			return domain.Subscription{}, err
		}
		return s.process(ctx, actor, sub, plan, ProcessRequest{ID: sub.ID, Reason: ClosedReason})
	}

	before := sub
	if err := fire(&sub, eventClose, domain.ErrSubscriptionNotClosable); err != nil {
		return domain.Subscription{}, err
	}
	now := s.now()
	sub.ClosedAt = timePtr(now)
	sub.UpdatedAt = now

	updated, err := s.store(ctx, sub)
	if err != nil {
		return domain.Subscription{}, err
	}

	err = s.eachKey(ctx, updated, func(app domain.Application, key domain.APIKey) error {
		if app.HasSharedAPIKey() {
			_, err := s.keys.Touch(ctx, key)
			return err
		}
		_, err := s.keys.Revoke(ctx, key, false)
		return err
	})
	if err != nil {
		return domain.Subscription{}, err
	}

	s.transitioned(ctx, "close", audit.SubscriptionClosed, updated, &before)
	s.notify(ctx, notifications.HookSubscriptionClosed, updated, nil)
	return updated, nil
}

// Pause suspends an accepted subscription and pauses its exclusive keys.
func (s *service) Pause(ctx context.Context, actor domain.Actor, id string) (domain.Subscription, error) {
	ctx = domain.WithActor(ctx, actor)

	sub, err := s.FindByID(ctx, id)
	if err != nil {
		return domain.Subscription{}, err
	}
	before := sub
	if err := fire(&sub, eventPause, domain.ErrSubscriptionNotPausable); err != nil {
		return domain.Subscription{}, err
	}
	now := s.now()
	sub.PausedAt = timePtr(now)
	sub.UpdatedAt = now

	updated, err := s.store(ctx, sub)
	if err != nil {
		return domain.Subscription{}, err
	}
	if err := s.setKeysPaused(ctx, updated, true); err != nil {
		return domain.Subscription{}, err
	}

	s.transitioned(ctx, "pause", audit.SubscriptionPaused, updated, &before)
	s.notify(ctx, notifications.HookSubscriptionPaused, updated, nil)
	return updated, nil
}

// Resume reactivates a paused subscription and unpauses its exclusive keys.
func (s *service) Resume(ctx context.Context, actor domain.Actor, id string) (domain.Subscription, error) {
	ctx = domain.WithActor(ctx, actor)

	sub, err := s.FindByID(ctx, id)
	if err != nil {
		return domain.Subscription{}, err
	}
	before := sub
	if err := fire(&sub, eventResume, domain.ErrSubscriptionNotPaused); err != nil {
		return domain.Subscription{}, err
	}
	sub.PausedAt = nil
	sub.UpdatedAt = s.now()

	updated, err := s.store(ctx, sub)
	if err != nil {
		return domain.Subscription{}, err
	}
	if err := s.setKeysPaused(ctx, updated, false); err != nil {
		return domain.Subscription{}, err
	}

	s.transitioned(ctx, "resume", audit.SubscriptionResumed, updated, &before)
	s.notify(ctx, notifications.HookSubscriptionResumed, updated, nil)
	return updated, nil
}

// Restore brings a closed or rejected subscription back to pending.
func (s *service) Restore(ctx context.Context, actor domain.Actor, id string) (domain.Subscription, error) {
	ctx = domain.WithActor(ctx, actor)

	sub, err := s.FindByID(ctx, id)
	if err != nil {
		return domain.Subscription{}, err
	}
	before := sub
	if err := fire(&sub, eventRestore, domain.ErrSubscriptionNotClosed); err != nil {
		return domain.Subscription{}, err
	}
	sub.ClosedAt = nil
	sub.PausedAt = nil
	sub.UpdatedAt = s.now()

	updated, err := s.store(ctx, sub)
	if err != nil {
		return domain.Subscription{}, err
	}
	s.transitioned(ctx, "restore", audit.SubscriptionUpdated, updated, &before)
	return updated, nil
}

// Transfer moves a live subscription to another plan of the same API with
// the same security.
func (s *service) Transfer(ctx context.Context, actor domain.Actor, id, planID string) (domain.Subscription, error) {
	ctx = domain.WithActor(ctx, actor)

	sub, err := s.FindByID(ctx, id)
	if err != nil {
		return domain.Subscription{}, err
	}
	if !sub.Status.IsLive() {
		return domain.Subscription{}, fmt.Errorf("%w: %s is %s", domain.ErrTransferNotAllowed, sub.ID, sub.Status)
	}
	current, err := s.plan(ctx, sub.Plan)
	if err != nil {
		return domain.Subscription{}, err
	}
	target, err := s.plan(ctx, planID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if err := policy.CheckTransfer(current, target); err != nil {
		return domain.Subscription{}, err
	}

	before := sub
	sub.Plan = target.ID
	sub.UpdatedAt = s.now()
	updated, err := s.store(ctx, sub)
	if err != nil {
		return domain.Subscription{}, err
	}

	s.transitioned(ctx, "transfer", audit.SubscriptionTransferred, updated, &before)
	s.notify(ctx, notifications.HookSubscriptionTransferred, updated, nil)
	return updated, nil
}

// Delete removes a subscription and detaches it from its keys.
func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	ctx = domain.WithActor(ctx, actor)

	sub, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.keys.DeleteBySubscription(ctx, sub.ID); err != nil {
		return domain.Technical("delete api keys of subscription "+sub.ID, err)
	}
	if err := s.subs.Delete(ctx, sub.ID); err != nil {
		return domain.Technical("delete subscription "+sub.ID, err)
	}

	metrics.SubscriptionTransitions.WithLabelValues("delete").Inc()
	s.record(ctx, audit.SubscriptionDeleted, sub, &sub)
	s.unindexed(ctx, sub)
	return nil
}

func (s *service) setKeysPaused(ctx context.Context, sub domain.Subscription, paused bool) error {
	return s.eachKey(ctx, sub, func(app domain.Application, key domain.APIKey) error {
		if app.HasSharedAPIKey() {
			_, err := s.keys.Touch(ctx, key)
			return err
		}
		key.Paused = paused
		_, err := s.keys.Update(ctx, key)
		return err
	})
}

// eachKey calls fn for every active key of an API key subscription.
func (s *service) eachKey(ctx context.Context, sub domain.Subscription, fn func(domain.Application, domain.APIKey) error) error {
	plan, err := s.plan(ctx, sub.Plan)
	if err != nil {
		return err
	}
	if plan.Security != domain.SecurityAPIKey {
		return nil
	}
	app, err := s.application(ctx, sub.Application)
	if err != nil {
		return err
	}
	keys, err := s.activeKeys(ctx, sub)
	if err != nil {
		return domain.Technical("find api keys of subscription "+sub.ID, err)
	}
	for _, key := range keys {
		if err := fn(app, key); err != nil {
			return domain.Technical("update api key "+key.ID, err)
		}
	}
	return nil
}
