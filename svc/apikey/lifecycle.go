package apikey

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrymomot/apimgmt/pkg/audit"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/keysync"
	"github.com/dmitrymomot/apimgmt/pkg/metrics"
	"github.com/dmitrymomot/apimgmt/pkg/notifications"
	"github.com/dmitrymomot/apimgmt/pkg/policy"
)

// Revoke revokes the stored state of key. Already revoked or expired keys
// are left untouched.
func (s *service) Revoke(ctx context.Context, key domain.APIKey, notify bool) (domain.APIKey, error) {
	key, unlock, err := s.lockStored(ctx, key.ID)
	if err != nil {
		return domain.APIKey{}, err
	}
	defer unlock()

	now := s.now()
	if key.Revoked || key.IsExpired(now) {
		return domain.APIKey{}, fmt.Errorf("%w: %s", domain.ErrAPIKeyAlreadyExpired, key.ID)
	}

	before := key
	key.Revoked = true
	key.RevokedAt = timePtr(now)
	key.UpdatedAt = now
	updated, err := s.keys.Update(ctx, key)
	if err != nil {
		return domain.APIKey{}, domain.Technical("revoke api key "+key.ID, err)
	}

	metrics.APIKeyOperations.WithLabelValues("revoke").Inc()
	s.record(ctx, audit.APIKeyRevoked, updated, &before)
	if notify {
		s.notify(ctx, notifications.HookAPIKeyRevoked, updated, nil)
	}
	s.publish(ctx, keysync.KeyRevoked, updated)
	return updated, nil
}

func (s *service) RevokeByID(ctx context.Context, id string, notify bool) (domain.APIKey, error) {
	return s.Revoke(ctx, domain.APIKey{ID: id}, notify)
}

// Reactivate lifts a revocation or an expiry. Keys of non shared
// applications follow their subscription: it must still be accepted or
// paused and the key expires with it.
func (s *service) Reactivate(ctx context.Context, key domain.APIKey) (domain.APIKey, error) {
	key, unlock, err := s.lockStored(ctx, key.ID)
	if err != nil {
		return domain.APIKey{}, err
	}
	defer unlock()

	now := s.now()
	if key.IsActive(now) {
		return domain.APIKey{}, fmt.Errorf("%w: %s", domain.ErrAPIKeyAlreadyActivated, key.ID)
	}

	app, err := s.application(ctx, key.Application)
	if err != nil {
		return domain.APIKey{}, err
	}

	before := key
	key.Revoked = false
	key.RevokedAt = nil
	key.UpdatedAt = now
	if !app.HasSharedAPIKey() && len(key.Subscriptions) > 0 {
		sub, err := s.subscription(ctx, key.Subscriptions[0])
		if err != nil {
			return domain.APIKey{}, err
		}
		if !policy.CanReactivateWith(sub) {
			return domain.APIKey{}, fmt.Errorf("%w: %s", domain.ErrSubscriptionNotActive, sub.ID)
		}
		key.ExpireAt = sub.EndingAt
	} else if key.IsExpired(now) {
		key.ExpireAt = nil
	}

	updated, err := s.keys.Update(ctx, key)
	if err != nil {
		return domain.APIKey{}, domain.Technical("reactivate api key "+key.ID, err)
	}

	metrics.APIKeyOperations.WithLabelValues("reactivate").Inc()
	s.record(ctx, audit.APIKeyReactivated, updated, &before)
	s.publish(ctx, keysync.KeyUpdated, updated)
	return updated, nil
}

// Update stores the subscriptions, pause flag and expiry of key. The expiry
// is adjusted to the subscription lifetime.
func (s *service) Update(ctx context.Context, key domain.APIKey) (domain.APIKey, error) {
	current, unlock, err := s.lockStored(ctx, key.ID)
	if err != nil {
		return domain.APIKey{}, err
	}
	defer unlock()

	if current.Revoked || current.IsExpired(s.now()) {
		return domain.APIKey{}, fmt.Errorf("%w: %s", domain.ErrAPIKeyAlreadyExpired, key.ID)
	}
	if len(key.Subscriptions) > 0 {
		current.Subscriptions = key.Subscriptions
	}
	current.Paused = key.Paused
	return s.updateExpiration(ctx, current, key.ExpireAt)
}

// Touch stores key unchanged but for updatedAt so gateways refresh their
// cached state.
func (s *service) Touch(ctx context.Context, key domain.APIKey) (domain.APIKey, error) {
	current, unlock, err := s.lockStored(ctx, key.ID)
	if err != nil {
		return domain.APIKey{}, err
	}
	defer unlock()

	current.UpdatedAt = s.now()
	updated, err := s.keys.Update(ctx, current)
	if err != nil {
		return domain.APIKey{}, domain.Technical("touch api key "+key.ID, err)
	}
	s.publish(ctx, keysync.KeyUpdated, updated)
	return updated, nil
}

// updateExpiration moves the expiry of key to expireAt. A past expiry
// means now, and keys of non shared applications never outlive their
// subscription. Callers hold the lock.
func (s *service) updateExpiration(ctx context.Context, key domain.APIKey, expireAt *time.Time) (domain.APIKey, error) {
	now := s.now()
	before := key
	key.UpdatedAt = now

	if key.Revoked {
		updated, err := s.keys.Update(ctx, key)
		if err != nil {
			return domain.APIKey{}, domain.Technical("update api key "+key.ID, err)
		}
		return updated, nil
	}

	if expireAt != nil && expireAt.Before(now) {
		expireAt = timePtr(now)
	}

	if len(key.Subscriptions) > 0 {
		app, err := s.application(ctx, key.Application)
		if err != nil {
			return domain.APIKey{}, err
		}
		if !app.HasSharedAPIKey() {
			sub, err := s.subscription(ctx, key.Subscriptions[0])
			if err != nil {
				return domain.APIKey{}, err
			}
			if sub.EndingAt != nil && (expireAt == nil || expireAt.After(*sub.EndingAt)) {
				expireAt = timePtr(*sub.EndingAt)
			}
		}
	}
	key.ExpireAt = expireAt

	updated, err := s.keys.Update(ctx, key)
	if err != nil {
		return domain.APIKey{}, domain.Technical("update api key "+key.ID, err)
	}

	if updated.ExpireAt != nil {
		metrics.APIKeyOperations.WithLabelValues("expire").Inc()
		s.record(ctx, audit.APIKeyExpired, updated, &before)
		var data map[string]string
		if updated.ExpireAt.After(now) {
			data = map[string]string{notifications.DataExpireAt: updated.ExpireAt.Format(time.RFC3339)}
		}
		s.notify(ctx, notifications.HookAPIKeyExpired, updated, data)
		s.publish(ctx, keysync.KeyExpired, updated)
	} else {
		s.publish(ctx, keysync.KeyUpdated, updated)
	}
	return updated, nil
}

// DeleteBySubscription detaches the subscription from its keys. A key
// left without subscriptions is deleted.
func (s *service) DeleteBySubscription(ctx context.Context, subscriptionID string) error {
	keys, err := s.keys.FindBySubscription(ctx, subscriptionID)
	if err != nil {
		return domain.Technical("find api keys of subscription "+subscriptionID, err)
	}
	var apps []string
	for _, key := range keys {
		if !slices.Contains(apps, key.Application) {
			apps = append(apps, key.Application)
		}
	}
	for _, app := range apps {
		if err := s.detach(ctx, app, subscriptionID); err != nil {
			return err
		}
	}
	return nil
}

// detach removes subscriptionID from the keys of app under the
// application lock.
func (s *service) detach(ctx context.Context, app, subscriptionID string) error {
	unlock := s.locks.lock(applicationLock(app))
	defer unlock()

	keys, err := s.keys.FindBySubscription(ctx, subscriptionID)
	if err != nil {
		return domain.Technical("find api keys of subscription "+subscriptionID, err)
	}
	for _, key := range keys {
		if key.Application != app {
			continue
		}
		remaining := make([]string, 0, len(key.Subscriptions))
		for _, id := range key.Subscriptions {
			if id != subscriptionID {
				remaining = append(remaining, id)
			}
		}
		if len(remaining) == 0 {
			if err := s.keys.Delete(ctx, key.ID); err != nil {
				return domain.Technical("delete api key "+key.ID, err)
			}
			metrics.APIKeyOperations.WithLabelValues("delete").Inc()
			s.publish(ctx, keysync.KeyRevoked, key)
			continue
		}
		key.Subscriptions = remaining
		key.UpdatedAt = s.now()
		updated, err := s.keys.Update(ctx, key)
		if err != nil {
			return domain.Technical("detach subscription from api key "+key.ID, err)
		}
		s.publish(ctx, keysync.KeyUpdated, updated)
	}
	return nil
}
