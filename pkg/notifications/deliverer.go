package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/apimgmt/pkg/email"
	"github.com/dmitrymomot/apimgmt/pkg/email/templates"
	"github.com/dmitrymomot/apimgmt/pkg/logger"
)

// Deliverer pushes a stored notification to its audience.
type Deliverer interface {
	Deliver(ctx context.Context, n Notification) error
}

// MultiDeliverer delivers through every channel and logs the failures.
type MultiDeliverer struct {
	deliverers []Deliverer
	logger     *slog.Logger
}

func NewMultiDeliverer(log *slog.Logger, deliverers ...Deliverer) *MultiDeliverer {
	if log == nil {
		log = slog.Default()
	}
	return &MultiDeliverer{deliverers: deliverers, logger: log}
}

func (m *MultiDeliverer) Deliver(ctx context.Context, n Notification) error {
	for i, d := range m.deliverers {
		if err := d.Deliver(ctx, n); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelWarn, "notification channel failed",
				slog.String("notification_id", n.ID),
				slog.String("hook", string(n.Hook)),
				slog.Int("deliverer_index", i),
				logger.Error(err),
			)
		}
	}
	return nil
}

// NoOpDeliverer drops every notification.
type NoOpDeliverer struct{}

func (NoOpDeliverer) Deliver(context.Context, Notification) error { return nil }

// EmailDeliverer emails the notification recipient. Notifications without
// a recipient are skipped.
type EmailDeliverer struct {
	sender email.Sender
}

func NewEmailDeliverer(sender email.Sender) *EmailDeliverer {
	if sender == nil {
		panic("notifications: email sender is required")
	}
	return &EmailDeliverer{sender: sender}
}

// Field order of the rendered table.
var fieldLabels = []struct{ key, label string }{
	{DataAPI, "API"},
	{DataApplication, "Application"},
	{DataPlan, "Plan"},
	{DataSubscription, "Subscription"},
	{DataAPIKey, "API key"},
	{DataOwner, "Owner"},
	{DataReason, "Reason"},
	{DataExpireAt, "Expires at"},
}

func (d *EmailDeliverer) Deliver(ctx context.Context, n Notification) error {
	if n.Recipient == "" {
		return nil
	}

	fields := make([]templates.Field, 0, len(fieldLabels))
	for _, f := range fieldLabels {
		fields = append(fields, templates.Field{Label: f.label, Value: n.Data[f.key]})
	}
	body, err := templates.Render(ctx, templates.Notification(n.Hook.Title(), message(n), fields))
	if err != nil {
		return fmt.Errorf("render %s email: %w", n.Hook, err)
	}

	return d.sender.Send(ctx, email.Message{
		To:       n.Recipient,
		Subject:  n.Hook.Title(),
		HTMLBody: body,
		Tag:      strings.ToLower(strings.ReplaceAll(string(n.Hook), "_", "-")),
	})
}

func message(n Notification) string {
	plan := n.Data[DataPlan]
	app := n.Data[DataApplication]
	switch n.Hook {
	case HookSubscriptionNew:
		return fmt.Sprintf("Application %s asked to subscribe to plan %s.", app, plan)
	case HookSubscriptionAccepted:
		return fmt.Sprintf("The subscription of %s to plan %s has been accepted.", app, plan)
	case HookSubscriptionRejected:
		return fmt.Sprintf("The subscription of %s to plan %s has been rejected.", app, plan)
	case HookAPIKeyExpired:
		return fmt.Sprintf("An API key of %s expires at %s.", app, n.Data[DataExpireAt])
	default:
		return fmt.Sprintf("%s for application %s.", n.Hook.Title(), app)
	}
}

// WebhookSender posts a JSON payload to an endpoint.
type WebhookSender interface {
	Send(ctx context.Context, endpoint string, data any) error
}

// WebhookEvent is the body posted to webhook endpoints.
type WebhookEvent struct {
	Notification
	Title   string `json:"title"`
	Message string `json:"message"`
}

// WebhookDeliverer posts every notification to each configured endpoint.
type WebhookDeliverer struct {
	sender    WebhookSender
	endpoints []string
}

func NewWebhookDeliverer(sender WebhookSender, endpoints ...string) *WebhookDeliverer {
	if sender == nil {
		panic("notifications: webhook sender is required")
	}
	return &WebhookDeliverer{sender: sender, endpoints: endpoints}
}

// Deliver tries every endpoint and joins the failures.
func (d *WebhookDeliverer) Deliver(ctx context.Context, n Notification) error {
	event := WebhookEvent{Notification: n, Title: n.Hook.Title(), Message: message(n)}
	var errs []error
	for _, endpoint := range d.endpoints {
		if err := d.sender.Send(ctx, endpoint, event); err != nil {
			errs = append(errs, fmt.Errorf("webhook %s: %w", endpoint, err))
		}
	}
	return errors.Join(errs...)
}
