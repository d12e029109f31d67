// Package notifications fans lifecycle hooks out to the people behind an
// API or an application.
//
// Manager persists every Notification through a Storage, then hands it to
// a Deliverer. Delivery is best effort: a failing deliverer is logged and
// the notification stays stored. EmailDeliverer renders the hook into an
// email and sends it to the notification recipient.
//
//	manager := notifications.NewManager(
//		notifications.NewMemoryStorage(),
//		notifications.NewEmailDeliverer(sender),
//		notifications.WithLogger(log),
//	)
//	_ = manager.Notify(ctx, notifications.Notification{
//		Hook:        notifications.HookSubscriptionAccepted,
//		Scope:       notifications.ScopeApplication,
//		ReferenceID: app.ID,
//		Recipient:   app.PrimaryOwner.Email,
//		Data:        map[string]string{notifications.DataPlan: plan.Name},
//	})
package notifications
