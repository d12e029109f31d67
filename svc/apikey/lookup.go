package apikey

import (
	"context"
	"errors"
	"slices"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

func (s *service) FindByID(ctx context.Context, id string) (domain.APIKey, error) {
	key, err := s.keys.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.APIKey{}, domain.ErrAPIKeyNotFound
	}
	if err != nil {
		return domain.APIKey{}, domain.Technical("find api key "+id, err)
	}
	return key, nil
}

func (s *service) FindByKey(ctx context.Context, key string) ([]domain.APIKey, error) {
	keys, err := s.keys.FindByKey(ctx, key)
	if err != nil {
		return nil, domain.Technical("find api keys by value", err)
	}
	return keys, nil
}

func (s *service) FindByKeyAndAPI(ctx context.Context, key, apiID string) (domain.APIKey, error) {
	found, err := s.keys.FindByKeyAndAPI(ctx, key, apiID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.APIKey{}, domain.ErrAPIKeyNotFound
	}
	if err != nil {
		return domain.APIKey{}, domain.Technical("find api key for api "+apiID, err)
	}
	return found, nil
}

// FindBySubscription returns the keys of an existing subscription, newest
// first.
func (s *service) FindBySubscription(ctx context.Context, subscriptionID string) ([]domain.APIKey, error) {
	if _, err := s.subscription(ctx, subscriptionID); err != nil {
		return nil, err
	}
	keys, err := s.keys.FindBySubscription(ctx, subscriptionID)
	if err != nil {
		return nil, domain.Technical("find api keys of subscription "+subscriptionID, err)
	}
	slices.SortStableFunc(keys, func(a, b domain.APIKey) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return keys, nil
}

func (s *service) FindByApplication(ctx context.Context, applicationID string) ([]domain.APIKey, error) {
	keys, err := s.keys.FindByApplication(ctx, applicationID)
	if err != nil {
		return nil, domain.Technical("find api keys of application "+applicationID, err)
	}
	return keys, nil
}

func (s *service) Search(ctx context.Context, q domain.APIKeyQuery) ([]domain.APIKey, error) {
	keys, err := s.keys.FindByCriteria(ctx, q)
	if err != nil {
		return nil, domain.Technical("search api keys", err)
	}
	return keys, nil
}

// CanCreate reports whether key may be bound to a subscription of the
// application on apiID. A value owned by another application always
// conflicts; a value of the same application conflicts only through a
// live subscription on the same API.
func (s *service) CanCreate(ctx context.Context, key, apiID, applicationID string) (bool, error) {
	existing, err := s.FindByKey(ctx, key)
	if err != nil {
		return false, err
	}
	for _, k := range existing {
		if k.Application != applicationID {
			return false, nil
		}
		subs, err := s.subscriptions.FindByIDs(ctx, k.Subscriptions)
		if err != nil {
			return false, domain.Technical("find subscriptions of api key "+k.ID, err)
		}
		for _, sub := range subs {
			if sub.API == apiID && sub.Status.IsLive() {
				return false, nil
			}
		}
	}
	return true, nil
}

func (s *service) subscription(ctx context.Context, id string) (domain.Subscription, error) {
	sub, err := s.subscriptions.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Subscription{}, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return domain.Subscription{}, domain.Technical("find subscription "+id, err)
	}
	return sub, nil
}

func (s *service) application(ctx context.Context, id string) (domain.Application, error) {
	app, err := s.applications.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Application{}, domain.ErrApplicationNotFound
	}
	if err != nil {
		return domain.Application{}, domain.Technical("find application "+id, err)
	}
	return app, nil
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
