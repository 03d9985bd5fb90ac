package auth

import (
	"context"

	"github.com/ritesshguptaa/recipy-app-api/internal/model"
)

type callerKey struct{}

// ContextWithAuth returns ctx carrying the authenticated caller.
func ContextWithAuth(ctx context.Context, caller *model.AuthContext) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// AuthFromContext returns the caller, or nil on anonymous requests.
func AuthFromContext(ctx context.Context) *model.AuthContext {
	caller, _ := ctx.Value(callerKey{}).(*model.AuthContext)
	return caller
}

// MustAuthFromContext is AuthFromContext for handlers mounted behind the
// auth middleware. A missing caller is a routing bug, so it panics.
func MustAuthFromContext(ctx context.Context) *model.AuthContext {
	if caller := AuthFromContext(ctx); caller != nil {
		return caller
	}
	panic("auth: handler reached without an authenticated caller")
}

// UserIDFromContext returns the caller's user ID, or "".
func UserIDFromContext(ctx context.Context) string {
	if caller := AuthFromContext(ctx); caller != nil {
		return caller.UserID
	}
	return ""
}
