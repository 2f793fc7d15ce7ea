package auth

import (
	"context"

	"github.com/dkotl/macrolog/internal/userctx"
)

// WithUserID stores the authenticated subject in the request context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return userctx.WithUserID(ctx, userID)
}

// GetUserID returns the authenticated subject, if any.
func GetUserID(ctx context.Context) (string, bool) {
	return userctx.GetUserID(ctx)
}
