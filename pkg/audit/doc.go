// Package audit records lifecycle events of subscriptions and API keys.
//
// A Logger stamps each Event with an id and a timestamp and hands it to a
// Storage. MemoryStorage keeps events in process for tests and the
// in-memory profile; MongoStorage appends them to a MongoDB collection.
//
//	trail := audit.NewLogger(audit.NewMongoStorage(db, ""))
//	_ = trail.Log(ctx, audit.SubscriptionCreated,
//		audit.WithReference(audit.ReferenceAPI, plan.API),
//		audit.WithProperty(audit.PropertyPlan, plan.ID),
//		audit.WithChange(nil, sub),
//	)
//
// Audit writes are best effort for callers: a failure is logged and never
// undoes the action that produced it.
package audit
