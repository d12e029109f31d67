package subscription

import (
	"context"
	"maps"

	"github.com/dmitrymomot/apimgmt/pkg/audit"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/notifications"
)

// Process accepts or rejects a pending subscription. Accepting an API key
// subscription mints its key first; when that fails the subscription stays
// pending.
func (s *service) Process(ctx context.Context, actor domain.Actor, req ProcessRequest) (domain.Subscription, error) {
	ctx = domain.WithActor(ctx, actor)

	sub, err := s.FindByID(ctx, req.ID)
	if err != nil {
		return domain.Subscription{}, err
	}
	plan, err := s.plan(ctx, sub.Plan)
	if err != nil {
		return domain.Subscription{}, err
	}
	return s.process(ctx, actor, sub, plan, req)
}

func (s *service) process(ctx context.Context, actor domain.Actor, sub domain.Subscription, plan domain.Plan, req ProcessRequest) (domain.Subscription, error) {
	if sub.Status != domain.SubscriptionPending {
		return domain.Subscription{}, domain.ErrSubscriptionAlreadyProcessed
	}
	if plan.Status == domain.PlanClosed {
		return domain.Subscription{}, domain.ErrPlanAlreadyClosed
	}

	before := sub
	now := s.now()
	sub.ProcessedBy = actor.UserID
	sub.ProcessedAt = timePtr(now)
	sub.UpdatedAt = now

	hook := notifications.HookSubscriptionRejected
	if req.Accepted {
		if err := fire(&sub, eventAccept, domain.ErrSubscriptionAlreadyProcessed); err != nil {
			return domain.Subscription{}, err
		}
		hook = notifications.HookSubscriptionAccepted
		sub.StartingAt = req.StartingAt
		if sub.StartingAt == nil {
			sub.StartingAt = timePtr(now)
		}
		sub.EndingAt = req.EndingAt
		sub.Reason = req.Reason

		if plan.Security == domain.SecurityAPIKey {
			app, err := s.application(ctx, sub.Application)
			if err != nil {
				return domain.Subscription{}, err
			}
			if _, err := s.keys.Generate(ctx, app, sub, req.CustomKey); err != nil {
				return domain.Subscription{}, domain.Technical("generate api key for subscription "+sub.ID, err)
			}
		}
	} else {
		if err := fire(&sub, eventReject, domain.ErrSubscriptionAlreadyProcessed); err != nil {
			return domain.Subscription{}, err
		}
		sub.Reason = req.Reason
		sub.ClosedAt = timePtr(now)
	}

	updated, err := s.store(ctx, sub)
	if err != nil {
		return domain.Subscription{}, err
	}
	s.transitioned(ctx, "process", audit.SubscriptionUpdated, updated, &before)

	var data map[string]string
	if updated.Reason != "" {
		data = map[string]string{notifications.DataReason: updated.Reason}
	}
	s.notify(ctx, hook, updated, data)
	return updated, nil
}

// Update changes the validity window and metadata of a live subscription.
// A new end date is propagated to the keys of exclusive API key
// subscriptions.
func (s *service) Update(ctx context.Context, actor domain.Actor, req UpdateRequest) (domain.Subscription, error) {
	ctx = domain.WithActor(ctx, actor)

	sub, err := s.FindByID(ctx, req.ID)
	if err != nil {
		return domain.Subscription{}, err
	}
	if !sub.Status.IsLive() {
		return domain.Subscription{}, domain.ErrSubscriptionNotUpdatable
	}

	before := sub
	if req.StartingAt != nil {
		sub.StartingAt = req.StartingAt
	}
	if req.EndingAt != nil {
		sub.EndingAt = req.EndingAt
	}
	if req.Metadata != nil {
		sub.Metadata = maps.Clone(req.Metadata)
	}
	sub.UpdatedAt = s.now()

	updated, err := s.store(ctx, sub)
	if err != nil {
		return domain.Subscription{}, err
	}

	if req.EndingAt != nil {
		if err := s.propagateEnding(ctx, updated); err != nil {
			return domain.Subscription{}, err
		}
	}

	s.transitioned(ctx, "update", audit.SubscriptionUpdated, updated, &before)
	return updated, nil
}

func (s *service) propagateEnding(ctx context.Context, sub domain.Subscription) error {
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
	if app.HasSharedAPIKey() {
		return nil
	}

	keys, err := s.activeKeys(ctx, sub)
	if err != nil {
		return err
	}
	for _, key := range keys {
		key.ExpireAt = sub.EndingAt
		if _, err := s.keys.Update(ctx, key); err != nil {
			return domain.Technical("update api key "+key.ID, err)
		}
	}
	return nil
}
