// Package subscription manages the lifecycle of subscriptions binding
// applications to API plans.
//
// A subscription starts PENDING and moves through the transitions below.
// CLOSED and REJECTED are terminal except for an explicit restore.
//
//	PENDING  -> ACCEPTED | REJECTED
//	ACCEPTED -> PAUSED | CLOSED
//	PAUSED   -> ACCEPTED | CLOSED
//	CLOSED   -> PENDING
//	REJECTED -> PENDING
//
// Plans with API key security get their keys from a KeyManager when the
// subscription is accepted; closing, pausing and resuming the subscription
// propagates to those keys. Audit, notifications and the search index are
// best-effort observers: their failures are logged and never fail a
// transition.
//
// Basic usage:
//
//	svc := subscription.NewService(db.Subscriptions(), db.Plans(), db.Applications(), db.ContentPages(), keys,
//		subscription.WithAuditLogger(auditLogger),
//		subscription.WithNotifier(notifier),
//	)
//
//	sub, err := svc.Create(ctx, actor, subscription.NewSubscription{
//		Plan:        "plan-id",
//		Application: "app-id",
//	})
package subscription
