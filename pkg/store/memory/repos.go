package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

// Subscriptions is the subscription repository view of a DB.
type Subscriptions struct{ db *DB }

func (r *Subscriptions) FindByID(_ context.Context, id string) (domain.Subscription, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	s, ok := r.db.subscriptions[id]
	if !ok {
		return domain.Subscription{}, domain.ErrNotFound
	}
	return cloneSubscription(s), nil
}

// FindByIDs returns the subscriptions that exist among ids, in ids order.
func (r *Subscriptions) FindByIDs(_ context.Context, ids []string) ([]domain.Subscription, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]domain.Subscription, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.db.subscriptions[id]; ok {
			out = append(out, cloneSubscription(s))
		}
	}
	return out, nil
}

// Search returns the page of subscriptions matching q, newest first.
func (r *Subscriptions) Search(_ context.Context, q domain.SubscriptionQuery, p domain.Pageable) (domain.Page[domain.Subscription], error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var all []domain.Subscription
	for _, s := range r.db.subscriptions {
		if q.Matches(s) {
			all = append(all, cloneSubscription(s))
		}
	}
	slices.SortFunc(all, func(a, b domain.Subscription) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return domain.NewPage(all, p), nil
}

func (r *Subscriptions) Create(_ context.Context, s domain.Subscription) (domain.Subscription, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.subscriptions[s.ID] = cloneSubscription(s)
	return cloneSubscription(s), nil
}

func (r *Subscriptions) Update(_ context.Context, s domain.Subscription) (domain.Subscription, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.subscriptions[s.ID]; !ok {
		return domain.Subscription{}, domain.ErrNotFound
	}
	r.db.subscriptions[s.ID] = cloneSubscription(s)
	return cloneSubscription(s), nil
}

func (r *Subscriptions) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.subscriptions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.db.subscriptions, id)
	return nil
}

// APIKeys is the API key repository view of a DB.
type APIKeys struct{ db *DB }

func (r *APIKeys) FindByID(_ context.Context, id string) (domain.APIKey, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	k, ok := r.db.keys[id]
	if !ok {
		return domain.APIKey{}, domain.ErrNotFound
	}
	return cloneKey(k), nil
}

func (r *APIKeys) FindByKey(_ context.Context, key string) ([]domain.APIKey, error) {
	return r.filter(func(k domain.APIKey) bool { return k.Key == key }), nil
}

// FindByKeyAndAPI returns the newest key with value key bound to a
// subscription of apiID.
func (r *APIKeys) FindByKeyAndAPI(_ context.Context, key, apiID string) (domain.APIKey, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var (
		found domain.APIKey
		ok    bool
	)
	for _, k := range r.db.keys {
		if k.Key != key || (ok && !k.CreatedAt.After(found.CreatedAt)) {
			continue
		}
		for _, id := range k.Subscriptions {
			if s, exists := r.db.subscriptions[id]; exists && s.API == apiID {
				found, ok = k, true
				break
			}
		}
	}
	if !ok {
		return domain.APIKey{}, domain.ErrNotFound
	}
	return cloneKey(found), nil
}

func (r *APIKeys) FindBySubscription(_ context.Context, subscriptionID string) ([]domain.APIKey, error) {
	return r.filter(func(k domain.APIKey) bool { return k.HasSubscription(subscriptionID) }), nil
}

func (r *APIKeys) FindByApplication(_ context.Context, applicationID string) ([]domain.APIKey, error) {
	return r.filter(func(k domain.APIKey) bool { return k.Application == applicationID }), nil
}

func (r *APIKeys) FindByCriteria(_ context.Context, q domain.APIKeyQuery) ([]domain.APIKey, error) {
	return r.filter(q.Matches), nil
}

func (r *APIKeys) Create(_ context.Context, k domain.APIKey) (domain.APIKey, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.keys[k.ID] = cloneKey(k)
	return cloneKey(k), nil
}

func (r *APIKeys) Update(_ context.Context, k domain.APIKey) (domain.APIKey, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.keys[k.ID]; !ok {
		return domain.APIKey{}, domain.ErrNotFound
	}
	r.db.keys[k.ID] = cloneKey(k)
	return cloneKey(k), nil
}

func (r *APIKeys) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.keys[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.db.keys, id)
	return nil
}

// filter returns matching keys, newest first.
func (r *APIKeys) filter(match func(domain.APIKey) bool) []domain.APIKey {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []domain.APIKey
	for _, k := range r.db.keys {
		if match(k) {
			out = append(out, cloneKey(k))
		}
	}
	slices.SortFunc(out, func(a, b domain.APIKey) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Plans is the read-only plan repository view of a DB.
type Plans struct{ db *DB }

func (r *Plans) FindByID(_ context.Context, id string) (domain.Plan, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.plans[id]
	if !ok {
		return domain.Plan{}, domain.ErrNotFound
	}
	p.ExcludedGroups = slices.Clone(p.ExcludedGroups)
	return p, nil
}

// Applications is the application repository view of a DB.
type Applications struct{ db *DB }

func (r *Applications) FindByID(_ context.Context, id string) (domain.Application, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	a, ok := r.db.applications[id]
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	return a, nil
}

// UpdateAPIKeyMode stores the settled key mode of an application.
func (r *Applications) UpdateAPIKeyMode(_ context.Context, id string, mode domain.APIKeyMode) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.applications[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.APIKeyMode = mode
	r.db.applications[id] = a
	return nil
}

// ContentPages is the read-only content page repository view of a DB.
type ContentPages struct{ db *DB }

func (r *ContentPages) FindByID(_ context.Context, id string) (domain.ContentPage, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.pages[id]
	if !ok {
		return domain.ContentPage{}, domain.ErrNotFound
	}
	return p, nil
}
