package subscription

import (
	"context"
	"errors"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

func (s *service) FindByID(ctx context.Context, id string) (domain.Subscription, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Subscription{}, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return domain.Subscription{}, domain.Technical("find subscription "+id, err)
	}
	return sub, nil
}

func (s *service) FindByIDs(ctx context.Context, ids []string) ([]domain.Subscription, error) {
	subs, err := s.subs.FindByIDs(ctx, ids)
	if err != nil {
		return nil, domain.Technical("find subscriptions by ids", err)
	}
	return subs, nil
}

func (s *service) FindByApplicationAndPlan(ctx context.Context, applicationID, planID string) ([]domain.Subscription, error) {
	q := domain.SubscriptionQuery{}
	if applicationID != "" {
		q.Applications = []string{applicationID}
	}
	if planID != "" {
		q.Plans = []string{planID}
	}
	return s.all(ctx, q)
}

func (s *service) FindByAPI(ctx context.Context, apiID string) ([]domain.Subscription, error) {
	return s.all(ctx, domain.SubscriptionQuery{APIs: []string{apiID}})
}

func (s *service) FindByPlan(ctx context.Context, planID string) ([]domain.Subscription, error) {
	return s.all(ctx, domain.SubscriptionQuery{Plans: []string{planID}})
}

// all runs an unpaged repository search.
func (s *service) all(ctx context.Context, q domain.SubscriptionQuery) ([]domain.Subscription, error) {
	page, err := s.subs.Search(ctx, q, domain.Pageable{})
	if err != nil {
		return nil, domain.Technical("search subscriptions", err)
	}
	return page.Content, nil
}

func (s *service) plan(ctx context.Context, id string) (domain.Plan, error) {
	plan, err := s.plans.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Plan{}, domain.ErrPlanNotFound
	}
	if err != nil {
		return domain.Plan{}, domain.Technical("find plan "+id, err)
	}
	return plan, nil
}

func (s *service) application(ctx context.Context, id string) (domain.Application, error) {
	app, err := s.apps.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Application{}, domain.ErrApplicationNotFound
	}
	if err != nil {
		return domain.Application{}, domain.Technical("find application "+id, err)
	}
	return app, nil
}

func (s *service) contentPage(ctx context.Context, id string) (domain.ContentPage, error) {
	page, err := s.pages.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ContentPage{}, domain.ErrContentPageNotFound
	}
	if err != nil {
		return domain.ContentPage{}, domain.Technical("find content page "+id, err)
	}
	return page, nil
}

// activeKeys returns the non revoked, non expired keys of sub.
func (s *service) activeKeys(ctx context.Context, sub domain.Subscription) ([]domain.APIKey, error) {
	keys, err := s.keys.Search(ctx, domain.APIKeyQuery{Subscriptions: []string{sub.ID}})
	if err != nil {
		return nil, err
	}
	now := s.now()
	active := make([]domain.APIKey, 0, len(keys))
	for _, k := range keys {
		if k.IsActive(now) {
			active = append(active, k)
		}
	}
	return active, nil
}

func (s *service) store(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	updated, err := s.subs.Update(ctx, sub)
	if err != nil {
		return domain.Subscription{}, domain.Technical("update subscription "+sub.ID, err)
	}
	return updated, nil
}
