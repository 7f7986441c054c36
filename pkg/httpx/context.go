package httpx

import "context"

type ctxKey string

// CtxKeyUserID carries the authenticated user's id (as a string) for generic
// consumers like the per-user rate limiter. Richer identity data lives in the
// HTTP layer's own context keys.
const CtxKeyUserID ctxKey = "user_id"

// WithUserID records the authenticated user's id for the generic middleware
// in this package. The HTTP layer calls this after resolving identity.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, id)
}

func userIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}
