package subscription

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/apimgmt/pkg/audit"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/notifications"
	"github.com/dmitrymomot/apimgmt/pkg/policy"
)

// Create subscribes an application to a plan. Plans with AUTO validation
// are accepted right away, the others wait for Process.
func (s *service) Create(ctx context.Context, actor domain.Actor, req NewSubscription) (domain.Subscription, error) {
	ctx = domain.WithActor(ctx, actor)

	plan, err := s.plan(ctx, req.Plan)
	if err != nil {
		return domain.Subscription{}, err
	}
	if err := policy.CheckPlanSubscribable(plan); err != nil {
		return domain.Subscription{}, err
	}
	if policy.IsRestricted(plan, actor, s.isEnvironmentAdmin(actor)) {
		return domain.Subscription{}, domain.ErrPlanRestricted
	}

	var page domain.ContentPage
	if policy.RequiresGeneralConditions(plan) {
		if page, err = s.contentPage(ctx, plan.GeneralConditions); err != nil {
			return domain.Subscription{}, err
		}
		if err := policy.CheckGeneralConditions(req.GeneralConditionsAccepted, req.GeneralConditionsContentRevision, page); err != nil {
			return domain.Subscription{}, err
		}
	}

	app, err := s.application(ctx, req.Application)
	if err != nil {
		return domain.Subscription{}, err
	}
	if err := policy.CheckApplicationSubscribable(app); err != nil {
		return domain.Subscription{}, err
	}

	existing, err := s.all(ctx, domain.SubscriptionQuery{Applications: []string{app.ID}})
	if err != nil {
		return domain.Subscription{}, err
	}
	plans, err := s.plansOf(ctx, existing)
	if err != nil {
		return domain.Subscription{}, err
	}
	sameAPI := make([]domain.Subscription, 0, len(existing))
	for _, sub := range existing {
		if sub.API == plan.API {
			sameAPI = append(sameAPI, sub)
		}
	}
	if err := policy.CheckExistingSubscriptions(plan, app, sameAPI, plans); err != nil {
		return domain.Subscription{}, err
	}

	clientID, err := policy.CheckClientID(plan, app)
	if err != nil {
		return domain.Subscription{}, err
	}

	if plan.Security == domain.SecurityAPIKey {
		if err := s.settleAPIKeyMode(ctx, app, req.APIKeyMode, existing, plans); err != nil {
			return domain.Subscription{}, err
		}
	}

	now := s.now()
	sub := domain.Subscription{
		ID:            uuid.NewString(),
		API:           plan.API,
		Plan:          plan.ID,
		Application:   app.ID,
		EnvironmentID: actor.EnvironmentID,
		ClientID:      clientID,
		Status:        domain.SubscriptionPending,
		Request:       req.Request,
		Metadata:      maps.Clone(req.Metadata),
		SubscribedBy:  actor.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if sub.EnvironmentID == "" {
		sub.EnvironmentID = app.EnvironmentID
	}
	if policy.RequiresGeneralConditions(plan) {
		sub.GeneralConditionsAccepted = req.GeneralConditionsAccepted
		sub.GeneralConditionsContentPageID = page.ID
		sub.GeneralConditionsContentRevision = req.GeneralConditionsContentRevision
	}

	created, err := s.subs.Create(ctx, sub)
	if err != nil {
		return domain.Subscription{}, domain.Technical("create subscription", err)
	}
	s.transitioned(ctx, "create", audit.SubscriptionCreated, created, nil)

	if plan.Validation == domain.ValidationAuto {
		system := domain.System(created.EnvironmentID)
		return s.process(domain.WithActor(ctx, system), system, created, plan, ProcessRequest{
			ID:         created.ID,
			Accepted:   true,
			StartingAt: timePtr(now),
			CustomKey:  req.CustomKey,
		})
	}

	s.notify(ctx, notifications.HookSubscriptionNew, created, nil)
	return created, nil
}

// plansOf resolves the plans of subs, one lookup per distinct plan.
// Subscriptions of deleted plans are left out.
func (s *service) plansOf(ctx context.Context, subs []domain.Subscription) (map[string]domain.Plan, error) {
	plans := make(map[string]domain.Plan)
	for _, sub := range subs {
		if _, ok := plans[sub.Plan]; ok {
			continue
		}
		plan, err := s.plan(ctx, sub.Plan)
		if errors.Is(err, domain.ErrPlanNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		plans[sub.Plan] = plan
	}
	return plans, nil
}

// settleAPIKeyMode stores the key mode of an application subscribing to
// its first API key plans.
func (s *service) settleAPIKeyMode(ctx context.Context, app domain.Application, requested domain.APIKeyMode, existing []domain.Subscription, plans map[string]domain.Plan) error {
	var n int
	for _, sub := range existing {
		if sub.Status.IsLive() && plans[sub.Plan].Security == domain.SecurityAPIKey {
			n++
		}
	}
	mode, ok := policy.ResolveAPIKeyMode(app.APIKeyMode, requested, n)
	if !ok {
		return nil
	}
	if err := s.apps.UpdateAPIKeyMode(ctx, app.ID, mode); err != nil {
		return domain.Technical("update api key mode of application "+app.ID, err)
	}
	return nil
}

func timePtr(t time.Time) *time.Time { return &t }
