package httpx

import (
	"context"

	"github.com/veritasid/iam-go/pkg/iamsdk"
)

type ctxKey string

const (
	CtxKeyIdentity ctxKey = "identity"
	CtxKeyToken    ctxKey = "token"
)

// IdentityFromContext returns the identity injected by Guard, or nil when
// the request did not pass through an authenticated guard.
func IdentityFromContext(ctx context.Context) *iamsdk.Identity {
	if v, ok := ctx.Value(CtxKeyIdentity).(*iamsdk.Identity); ok {
		return v
	}
	return nil
}

// TokenFromContext returns the bearer token injected by Guard, or "".
func TokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyToken).(string); ok {
		return v
	}
	return ""
}

func contextWithAuth(ctx context.Context, ident *iamsdk.Identity, token string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyIdentity, ident)
	ctx = context.WithValue(ctx, CtxKeyToken, token)
	return ctx
}
