package subscription

import (
	"context"
	"log/slog"
	"maps"

	"github.com/dmitrymomot/apimgmt/pkg/audit"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/logger"
	"github.com/dmitrymomot/apimgmt/pkg/metrics"
	"github.com/dmitrymomot/apimgmt/pkg/notifications"
)

// record audits action under both the API and the application of sub.
func (s *service) record(ctx context.Context, action audit.Action, sub domain.Subscription, before *domain.Subscription) {
	if s.audit == nil {
		return
	}
	var prev any
	if before != nil {
		prev = *before
	}
	refs := []struct {
		t  audit.ReferenceType
		id string
	}{
		{audit.ReferenceAPI, sub.API},
		{audit.ReferenceApplication, sub.Application},
	}
	for _, ref := range refs {
		err := s.audit.Log(ctx, action,
			audit.WithReference(ref.t, ref.id),
			audit.WithEnvironment(sub.EnvironmentID),
			audit.WithProperty(audit.PropertyAPI, sub.API),
			audit.WithProperty(audit.PropertyApplication, sub.Application),
			audit.WithProperty(audit.PropertyPlan, sub.Plan),
			audit.WithChange(prev, sub),
		)
		if err != nil {
			s.sideEffectFailed(ctx, "audit", sub, err)
		}
	}
}

// notify sends hook to the audiences of the API and of the application.
// The application audience is addressed to its primary owner.
func (s *service) notify(ctx context.Context, hook notifications.Hook, sub domain.Subscription, data map[string]string) {
	if s.notifier == nil {
		return
	}
	params := map[string]string{
		notifications.DataAPI:          sub.API,
		notifications.DataSubscription: sub.ID,
	}
	var recipient string
	if app, err := s.application(ctx, sub.Application); err == nil {
		params[notifications.DataApplication] = app.Name
		params[notifications.DataOwner] = app.PrimaryOwner.DisplayName
		recipient = app.PrimaryOwner.Email
	}
	if plan, err := s.plan(ctx, sub.Plan); err == nil {
		params[notifications.DataPlan] = plan.Name
	}
	maps.Copy(params, data)

	for _, n := range []notifications.Notification{
		{Hook: hook, Scope: notifications.ScopeAPI, ReferenceID: sub.API, Data: params},
		{Hook: hook, Scope: notifications.ScopeApplication, ReferenceID: sub.Application, Recipient: recipient, Data: maps.Clone(params)},
	} {
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.sideEffectFailed(ctx, "notification", sub, err)
		}
	}
}

func (s *service) indexed(ctx context.Context, sub domain.Subscription) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(ctx, sub); err != nil {
		s.sideEffectFailed(ctx, "index", sub, err)
	}
}

func (s *service) unindexed(ctx context.Context, sub domain.Subscription) {
	if s.index == nil {
		return
	}
	if err := s.index.Remove(ctx, sub.ID); err != nil {
		s.sideEffectFailed(ctx, "index", sub, err)
	}
}

// transitioned runs the observers of a persisted change.
func (s *service) transitioned(ctx context.Context, op string, action audit.Action, sub domain.Subscription, before *domain.Subscription) {
	metrics.SubscriptionTransitions.WithLabelValues(op).Inc()
	s.record(ctx, action, sub, before)
	s.indexed(ctx, sub)
}

func (s *service) sideEffectFailed(ctx context.Context, collaborator string, sub domain.Subscription, err error) {
	metrics.SideEffectFailures.WithLabelValues(collaborator).Inc()
	s.logger.LogAttrs(ctx, slog.LevelWarn, "subscription side effect failed",
		logger.Component("subscription"),
		slog.String("collaborator", collaborator),
		logger.SubscriptionID(sub.ID),
		logger.ApplicationID(sub.Application),
		logger.PlanID(sub.Plan),
		logger.Error(err),
	)
}
