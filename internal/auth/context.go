package auth

import "context"

type userIDKey struct{}

// ContextWithUserID stores the authenticated user ID on the request context.
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user ID, or zero when the
// request did not pass authentication.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey{}).(int64); ok {
		return id
	}

	return 0
}
