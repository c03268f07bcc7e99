package middleware

import (
	"context"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
)

type contextKey string

const (
	ctxIdentityRef contextKey = "identity_ref"
	ctxRole        contextKey = "actor_role"
)

// IdentityRefFromContext returns the Firebase uid of the authenticated caller.
func IdentityRefFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxIdentityRef).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.Role {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.Role); ok {
		return v
	}
	return ""
}

// WithIdentity injects the caller into the context. Tests use it to skip Auth.
func WithIdentity(ctx context.Context, ref string, role enums.Role) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxIdentityRef, ref)
	return context.WithValue(ctx, ctxRole, role)
}
