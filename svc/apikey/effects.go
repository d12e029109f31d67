package apikey

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/apimgmt/pkg/audit"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/keysync"
	"github.com/dmitrymomot/apimgmt/pkg/logger"
	"github.com/dmitrymomot/apimgmt/pkg/metrics"
	"github.com/dmitrymomot/apimgmt/pkg/notifications"
)

// keySubscriptions resolves the subscriptions of key for side effects.
// Lookup failures are logged and yield nothing.
func (s *service) keySubscriptions(ctx context.Context, key domain.APIKey) []domain.Subscription {
	if len(key.Subscriptions) == 0 {
		return nil
	}
	subs, err := s.subscriptions.FindByIDs(ctx, key.Subscriptions)
	if err != nil {
		s.sideEffectFailed(ctx, "subscriptions", key, err)
		return nil
	}
	return subs
}

// record audits action once per subscription of the key, filed under the
// subscription API.
func (s *service) record(ctx context.Context, action audit.Action, key domain.APIKey, before *domain.APIKey) {
	if s.audit == nil {
		return
	}
	var prev any
	if before != nil {
		prev = *before
	}
	for _, sub := range s.keySubscriptions(ctx, key) {
		err := s.audit.Log(ctx, action,
			audit.WithReference(audit.ReferenceAPI, sub.API),
			audit.WithEnvironment(key.EnvironmentID),
			audit.WithProperty(audit.PropertyAPIKey, key.ID),
			audit.WithProperty(audit.PropertyAPI, sub.API),
			audit.WithProperty(audit.PropertyApplication, key.Application),
			audit.WithChange(prev, key),
		)
		if err != nil {
			s.sideEffectFailed(ctx, "audit", key, err)
		}
	}
}

// notify sends hook to the audience of every API the key gives access to.
func (s *service) notify(ctx context.Context, hook notifications.Hook, key domain.APIKey, data map[string]string) {
	if s.notifier == nil {
		return
	}
	app, err := s.application(ctx, key.Application)
	if err != nil {
		s.sideEffectFailed(ctx, "notification", key, err)
		return
	}
	for _, sub := range s.keySubscriptions(ctx, key) {
		params := map[string]string{
			notifications.DataAPI:          sub.API,
			notifications.DataApplication:  app.Name,
			notifications.DataSubscription: sub.ID,
			notifications.DataAPIKey:       key.ID,
			notifications.DataOwner:        app.PrimaryOwner.DisplayName,
		}
		if plan, err := s.plans.FindByID(ctx, sub.Plan); err == nil {
			params[notifications.DataPlan] = plan.Name
		}
		for k, v := range data {
			params[k] = v
		}
		err := s.notifier.Notify(ctx, notifications.Notification{
			Hook:        hook,
			Scope:       notifications.ScopeAPI,
			ReferenceID: sub.API,
			Recipient:   app.PrimaryOwner.Email,
			Data:        params,
		})
		if err != nil {
			s.sideEffectFailed(ctx, "notification", key, err)
		}
	}
}

func (s *service) publish(ctx context.Context, t keysync.EventType, key domain.APIKey) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, keysync.NewEvent(t, key, s.now())); err != nil {
		s.sideEffectFailed(ctx, "keysync", key, err)
	}
}

func (s *service) sideEffectFailed(ctx context.Context, collaborator string, key domain.APIKey, err error) {
	metrics.SideEffectFailures.WithLabelValues(collaborator).Inc()
	s.logger.LogAttrs(ctx, slog.LevelWarn, "api key side effect failed",
		logger.Component("apikey"),
		slog.String("collaborator", collaborator),
		logger.APIKeyID(key.ID),
		logger.ApplicationID(key.Application),
		logger.Error(err),
	)
}

func timePtr(t time.Time) *time.Time { return &t }
