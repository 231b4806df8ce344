// Package httpx provides HTTP middleware and response helpers for
// applications protecting routes with a remote IAM service.
package httpx

import (
	"net/http"
	"strings"

	"github.com/veritasid/iam-go/pkg/iamsdk"
	"github.com/veritasid/iam-go/pkg/slogx"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// GuardConfig configures a route guard.
type GuardConfig struct {
	// Client verifies tokens and answers permission/role checks. Required.
	Client *iamsdk.Client

	// Permission, when set, requires the caller to hold this permission.
	// Takes precedence over Role.
	Permission string

	// Role, when set (and Permission is not), requires the caller to hold
	// this role.
	Role string

	// RedirectURL, when set, turns denials into a 302 redirect (browser
	// flows). When empty, denials are RFC 6750 bearer errors (API flows).
	RedirectURL string
}

// Guard returns middleware that admits a request only when its bearer token
// verifies against the IAM service and, if configured, the caller holds the
// required permission or role.
//
// Evaluation order: missing or invalid token denies immediately, before any
// permission or role check is issued; then Permission, then Role. The
// verified identity is injected into the request context for downstream
// handlers (IdentityFromContext).
//
// Verification goes through the client's cache, so guarding hot routes does
// not re-verify on every request within the cache TTL.
func Guard(cfg GuardConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				deny(w, r, cfg, http.StatusUnauthorized, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
			if raw == "" {
				// An empty token must never reach VerifyToken: the client
				// would fall back to its own current token and admit the
				// request as someone else's session.
				deny(w, r, cfg, http.StatusUnauthorized, "missing bearer token")
				return
			}

			ident, err := cfg.Client.VerifyToken(ctx, raw)
			if err != nil {
				log.Warn("token verification failed", "err", err)
				deny(w, r, cfg, http.StatusUnauthorized, "token verification failed")
				return
			}

			switch {
			case cfg.Permission != "":
				if !cfg.Client.HasPermission(ctx, cfg.Permission, raw) {
					deny(w, r, cfg, http.StatusForbidden, "missing required permission")
					return
				}
			case cfg.Role != "":
				if !cfg.Client.HasRole(ctx, cfg.Role, raw) {
					deny(w, r, cfg, http.StatusForbidden, "missing required role")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, ident, raw)))
		})
	}
}

// deny redirects browser flows and writes bearer errors for API flows.
func deny(w http.ResponseWriter, r *http.Request, cfg GuardConfig, code int, desc string) {
	if cfg.RedirectURL != "" {
		http.Redirect(w, r, cfg.RedirectURL, http.StatusFound)
		return
	}
	writeBearerError(w, code, desc)
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, code int, desc string) {
	errCode := "invalid_token"
	if code == http.StatusForbidden {
		errCode = "insufficient_scope"
	}
	w.Header().Set("WWW-Authenticate", `Bearer error="`+errCode+`", error_description="`+desc+`"`)
	w.WriteHeader(code)
}
