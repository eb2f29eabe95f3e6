package middleware

import (
	"context"

	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

type contextKey string

const ctxActor contextKey = "actor"

// ActorFromContext returns the authenticated caller seeded by Auth, or
// false when the request never passed through it.
func ActorFromContext(ctx context.Context) (types.Actor, bool) {
	if ctx == nil {
		return types.Actor{}, false
	}
	if v, ok := ctx.Value(ctxActor).(types.Actor); ok {
		return v, true
	}
	return types.Actor{}, false
}

// WithActor injects the caller into the context for downstream handlers.
func WithActor(ctx context.Context, actor types.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}
