// Package userctx carries the authenticated user ID in request contexts.
// Both the auth middleware and the feature services read it, so it lives
// below them in the dependency tree.
package userctx

import "context"

// userIDKey is an unexported struct type so no other package can collide
// with or forge the stored value.
type userIDKey struct{}

// WithUserID returns a context carrying the user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID extracts the user ID stored by WithUserID.
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok
}
