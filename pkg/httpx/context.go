package httpx

import (
	"context"

	"github.com/aussiebroadwan/qayimli/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyEmail  ctxKey = "email"
	CtxKeyRoles  ctxKey = "roles"
	CtxKeyClaims ctxKey = "claims"
)

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyEmail, c.Email)
	ctx = context.WithValue(ctx, CtxKeyRoles, c.Roles)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// EmailFromContext returns the authenticated caller's email.
func EmailFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyEmail).(string)
	return v, ok && v != ""
}

func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	v, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return v, ok
}

func rolesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyRoles).([]string); ok {
		return v
	}
	return nil
}
