// Package contexthelpers stores and retrieves request-scoped values.
package contexthelpers

import (
	"context"
	"net/http"
)

type contextKey string

// IsAuthenticatedContextKey marks that the request carries a signed-in user.
const IsAuthenticatedContextKey = contextKey("isAuthenticated")

// AuthenticatedUserIDContextKey holds the signed-in user's id.
const AuthenticatedUserIDContextKey = contextKey("authenticatedUserID")

// IsAuthenticated reports whether the request context carries a signed-in user.
func IsAuthenticated(ctx context.Context) bool {
	isAuthenticated, ok := ctx.Value(IsAuthenticatedContextKey).(bool)
	if !ok {
		return false
	}

	return isAuthenticated
}

// AuthenticatedUserID returns the signed-in user's id or 0 when unauthenticated.
func AuthenticatedUserID(ctx context.Context) int {
	userID, ok := ctx.Value(AuthenticatedUserIDContextKey).(int)
	if !ok {
		return 0
	}

	return userID
}

// AuthenticateContext returns a request whose context carries the signed-in user.
func AuthenticateContext(r *http.Request, userID int) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, IsAuthenticatedContextKey, true)
	ctx = context.WithValue(ctx, AuthenticatedUserIDContextKey, userID)
	return r.WithContext(ctx)
}
