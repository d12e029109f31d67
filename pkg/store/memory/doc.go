// Package memory provides in-memory repositories for subscriptions, API
// keys, plans, applications and content pages.
//
// All repositories share one DB so key lookups by API can resolve the
// subscriptions they are bound to. Values are copied in and out, callers
// never share slices or maps with the store.
//
//	db := memory.New()
//	db.PutPlan(plan)
//	db.PutApplication(app)
//
//	keys := apikey.NewService(db.APIKeys(), db.Subscriptions(), db.Plans(), db.Applications())
//
// The DB is safe for concurrent use.
package memory
