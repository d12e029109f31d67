package domain

import "context"

type actorKey struct{}

// WithActor stores the actor in ctx for collaborators that only see a
// context, such as the audit logger.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// ActorUserID extracts the acting user id, matching the extractor
// signature of the audit logger.
func ActorUserID(ctx context.Context) (string, bool) {
	a, ok := ActorFromContext(ctx)
	if !ok || a.UserID == "" {
		return "", false
	}
	return a.UserID, true
}
