package apikey

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/apimgmt/pkg/audit"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/keysync"
	"github.com/dmitrymomot/apimgmt/pkg/metrics"
	"github.com/dmitrymomot/apimgmt/pkg/notifications"
)

// Generate returns the key sub must use. SHARED applications get their
// preferred live key with sub appended; other applications get a new key.
func (s *service) Generate(ctx context.Context, app domain.Application, sub domain.Subscription, customKey string) (domain.APIKey, error) {
	unlock := s.locks.lock(applicationLock(app.ID))
	defer unlock()

	if !app.HasSharedAPIKey() {
		return s.create(ctx, sub, customKey)
	}
	return s.findOrCreate(ctx, app, sub, customKey)
}

func (s *service) findOrCreate(ctx context.Context, app domain.Application, sub domain.Subscription, customKey string) (domain.APIKey, error) {
	keys, err := s.keys.FindByApplication(ctx, app.ID)
	if err != nil {
		return domain.APIKey{}, domain.Technical("find api keys of application "+app.ID, err)
	}

	now := s.now()
	var best *domain.APIKey
	for _, key := range keys {
		if !key.IsActive(now) {
			continue
		}
		if key.AddSubscription(sub.ID) {
			key.UpdatedAt = now
			updated, err := s.keys.Update(ctx, key)
			if err != nil {
				return domain.APIKey{}, domain.Technical("add subscription to api key "+key.ID, err)
			}
			key = updated
			s.publish(ctx, keysync.KeyUpdated, key)
		}
		if best == nil || preferred(key, *best) {
			best = &key
		}
	}
	if best == nil {
		return s.create(ctx, sub, customKey)
	}
	return *best, nil
}

// preferred orders shared keys: non revoked first, then the latest
// expiry, a missing expiry being the latest.
func preferred(a, b domain.APIKey) bool {
	if a.Revoked != b.Revoked {
		return !a.Revoked
	}
	if b.ExpireAt == nil {
		return false
	}
	if a.ExpireAt == nil {
		return true
	}
	return a.ExpireAt.After(*b.ExpireAt)
}

// create mints and stores a key for sub. Callers hold the lock.
func (s *service) create(ctx context.Context, sub domain.Subscription, customKey string) (domain.APIKey, error) {
	key, err := s.keyFor(ctx, sub, customKey)
	if err != nil {
		return domain.APIKey{}, err
	}
	created, err := s.keys.Create(ctx, key)
	if err != nil {
		return domain.APIKey{}, domain.Technical("generate api key for subscription "+sub.ID, err)
	}

	metrics.APIKeyOperations.WithLabelValues("generate").Inc()
	s.record(ctx, audit.APIKeyCreated, created, nil)
	s.publish(ctx, keysync.KeyCreated, created)
	return created, nil
}

// keyFor builds an unsaved key bound to sub that expires with it.
func (s *service) keyFor(ctx context.Context, sub domain.Subscription, customKey string) (domain.APIKey, error) {
	if customKey != "" {
		ok, err := s.CanCreate(ctx, customKey, sub.API, sub.Application)
		if err != nil {
			return domain.APIKey{}, err
		}
		if !ok {
			return domain.APIKey{}, domain.ErrAPIKeyAlreadyExisting
		}
	}

	now := s.now()
	if sub.EndingAt != nil && sub.EndingAt.Before(now) {
		return domain.APIKey{}, fmt.Errorf("%w: %s", domain.ErrSubscriptionClosed, sub.ID)
	}

	key := s.newKey(sub.Application, customKey)
	key.Subscriptions = []string{sub.ID}
	key.EnvironmentID = sub.EnvironmentID
	if sub.EndingAt != nil {
		key.ExpireAt = timePtr(*sub.EndingAt)
	}
	return key, nil
}

func (s *service) newKey(applicationID, customKey string) domain.APIKey {
	now := s.now()
	value := customKey
	if value == "" {
		value = s.generate()
	}
	return domain.APIKey{
		ID:          uuid.NewString(),
		Key:         value,
		Application: applicationID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Renew mints a replacement key for sub and lets the previous keys expire
// after the grace period. In SHARED mode the new key takes over the
// subscriptions of every live key of the application.
func (s *service) Renew(ctx context.Context, sub domain.Subscription, customKey string) (domain.APIKey, error) {
	plan, err := s.plan(ctx, sub.Plan)
	if err != nil {
		return domain.APIKey{}, err
	}
	if plan.Security != domain.SecurityAPIKey {
		return domain.APIKey{}, domain.Technicalf("renew api key of subscription %s: invalid plan security %s", sub.ID, plan.Security)
	}
	app, err := s.application(ctx, sub.Application)
	if err != nil {
		return domain.APIKey{}, err
	}

	unlock := s.locks.lock(applicationLock(app.ID))
	defer unlock()

	key, err := s.keyFor(ctx, sub, customKey)
	if err != nil {
		return domain.APIKey{}, err
	}

	var previous []domain.APIKey
	if app.HasSharedAPIKey() {
		previous, err = s.keys.FindByApplication(ctx, app.ID)
		if err != nil {
			return domain.APIKey{}, domain.Technical("find api keys of application "+app.ID, err)
		}
		now := s.now()
		for _, k := range previous {
			if !k.IsActive(now) {
				continue
			}
			for _, id := range k.Subscriptions {
				key.AddSubscription(id)
			}
		}
		// A shared key outlives any single subscription.
		key.ExpireAt = nil
	}

	created, err := s.keys.Create(ctx, key)
	if err != nil {
		return domain.APIKey{}, domain.Technical("renew api key for subscription "+sub.ID, err)
	}

	if !app.HasSharedAPIKey() {
		previous, err = s.keys.FindBySubscription(ctx, sub.ID)
		if err != nil {
			return domain.APIKey{}, domain.Technical("find api keys of subscription "+sub.ID, err)
		}
	}
	if err := s.expireOthers(ctx, previous, created); err != nil {
		return domain.APIKey{}, err
	}

	s.renewed(ctx, created)
	return created, nil
}

// RenewForApplication mints a new shared key carrying every subscription
// of the application and expires the other keys after the grace period.
func (s *service) RenewForApplication(ctx context.Context, app domain.Application) (domain.APIKey, error) {
	if !app.HasSharedAPIKey() {
		return domain.APIKey{}, domain.ErrInvalidApplicationAPIKeyMode
	}

	unlock := s.locks.lock(applicationLock(app.ID))
	defer unlock()

	key := s.newKey(app.ID, "")
	key.EnvironmentID = app.EnvironmentID
	created, err := s.keys.Create(ctx, key)
	if err != nil {
		return domain.APIKey{}, domain.Technical("renew api key for application "+app.ID, err)
	}

	all, err := s.keys.FindByApplication(ctx, app.ID)
	if err != nil {
		return domain.APIKey{}, domain.Technical("find api keys of application "+app.ID, err)
	}
	if err := s.expireOthers(ctx, all, created); err != nil {
		return domain.APIKey{}, err
	}

	for _, k := range all {
		for _, id := range k.Subscriptions {
			created.AddSubscription(id)
		}
	}
	created.UpdatedAt = s.now()
	merged, err := s.keys.Update(ctx, created)
	if err != nil {
		return domain.APIKey{}, domain.Technical("merge subscriptions onto api key "+created.ID, err)
	}
	created = merged

	s.renewed(ctx, created)
	return created, nil
}

func (s *service) renewed(ctx context.Context, key domain.APIKey) {
	metrics.APIKeyOperations.WithLabelValues("renew").Inc()
	s.record(ctx, audit.APIKeyRenewed, key, nil)
	s.notify(ctx, notifications.HookAPIKeyRenewed, key, nil)
	s.publish(ctx, keysync.KeyCreated, key)
}

// expireOthers schedules the expiry of every non expired key except active
// at active.CreatedAt plus the grace period.
func (s *service) expireOthers(ctx context.Context, keys []domain.APIKey, active domain.APIKey) error {
	expireAt := active.CreatedAt.Add(s.grace)
	now := s.now()
	for _, key := range keys {
		if key.ID == active.ID || key.IsExpired(now) {
			continue
		}
		if _, err := s.updateExpiration(ctx, key, timePtr(expireAt)); err != nil {
			return err
		}
	}
	return nil
}
