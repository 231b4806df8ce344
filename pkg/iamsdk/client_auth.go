package iamsdk

import (
	"context"
	"net/http"
)

// Login authenticates with email/password credentials. On success the
// returned token becomes the client's current token and the result carries
// reconciled permissions. On failure the current token is left untouched and
// the error prefers field-level validation detail.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	var payload loginPayload
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &payload, requestOpts{
		name:         "login",
		fallback:     "login failed",
		preferDetail: true,
	})
	if err != nil {
		return nil, err
	}

	res := newAuthResult(payload)
	c.setToken(res.Token)
	return res, nil
}

func newAuthResult(p loginPayload) *AuthResult {
	return &AuthResult{
		Token:     p.AccessToken,
		TokenType: p.TokenType,
		ExpiresIn: p.ExpiresIn,
		Identity:  *newIdentity(p.User, p.Permissions),
	}
}

// VerifyToken asks the service to confirm a token and returns the associated
// identity. An empty token means "use the current token"; having neither is
// ErrNoToken.
//
// Results are cached per token string for the configured TTL; a cache hit
// skips the network entirely. Concurrent verifications of the same token are
// not de-duplicated: both miss, both issue requests, last response wins.
// Callers that need at-most-once verification must serialize themselves.
//
// On verification failure the cache entry for the token is invalidated, and
// if the token was the client's current one it is cleared as well.
func (c *Client) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	tok, err := c.effectiveToken(token)
	if err != nil {
		return nil, err
	}

	if ident, ok := c.cache.get(tok); ok {
		c.metrics.observeCacheHit()
		return ident, nil
	}
	c.metrics.observeCacheMiss()

	var payload verifyPayload
	err = c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &payload, requestOpts{
		name:     "verify_token",
		fallback: "token verification failed",
		token:    tok,
	})
	if err != nil {
		c.cache.invalidate(tok)
		if c.Token() == tok {
			c.setToken("")
		}
		return nil, err
	}

	ident := newIdentity(payload.User, payload.Permissions)
	c.cache.put(tok, ident)
	return ident, nil
}

// checkRequest is the wire shape of permission/role check requests.
type checkRequest struct {
	Permission string `json:"permission,omitempty"`
	Role       string `json:"role,omitempty"`
}

// HasPermission reports whether the token's user holds the named permission.
// It fails closed: any failure (denied, network error, expired token) is
// logged and reported as false, never raised. Callers cannot distinguish
// "denied" from "unreachable".
func (c *Client) HasPermission(ctx context.Context, permission, token string) bool {
	tok, err := c.effectiveToken(token)
	if err != nil {
		c.log.Warn("permission check without token", "permission", permission)
		return false
	}

	var out struct {
		HasPermission bool `json:"has_permission"`
	}
	err = c.doJSON(ctx, http.MethodPost, "/auth/check-permission", checkRequest{Permission: permission}, &out, requestOpts{
		name:     "check_permission",
		fallback: "permission check failed",
		token:    tok,
	})
	if err != nil {
		c.log.Warn("permission check failed", "permission", permission, "err", err)
		return false
	}
	return out.HasPermission
}

// HasRole reports whether the token's user holds the named role. Same
// fail-closed contract as HasPermission.
func (c *Client) HasRole(ctx context.Context, role, token string) bool {
	tok, err := c.effectiveToken(token)
	if err != nil {
		c.log.Warn("role check without token", "role", role)
		return false
	}

	var out struct {
		HasRole bool `json:"has_role"`
	}
	err = c.doJSON(ctx, http.MethodPost, "/auth/check-role", checkRequest{Role: role}, &out, requestOpts{
		name:     "check_role",
		fallback: "role check failed",
		token:    tok,
	})
	if err != nil {
		c.log.Warn("role check failed", "role", role, "err", err)
		return false
	}
	return out.HasRole
}

// RefreshToken exchanges a token for a fresh one. On success the new token
// becomes the client's current token and registered observers are notified.
// Changed reports whether the service actually issued a different token.
func (c *Client) RefreshToken(ctx context.Context, token string) (*TokenRefresh, error) {
	tok, err := c.effectiveToken(token)
	if err != nil {
		return nil, err
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	err = c.doJSON(ctx, http.MethodPost, "/auth/refresh", nil, &payload, requestOpts{
		name:     "refresh_token",
		fallback: "token refresh failed",
		token:    tok,
	})
	if err != nil {
		return nil, err
	}

	c.setToken(payload.AccessToken)
	return &TokenRefresh{
		Token:     payload.AccessToken,
		ExpiresIn: payload.ExpiresIn,
		Changed:   payload.AccessToken != tok,
	}, nil
}

// Logout ends the session. The remote call is best-effort: failures are
// logged and swallowed. The local token and the whole verification cache are
// cleared unconditionally. Contrast with LogoutAll, which propagates the
// remote error.
func (c *Client) Logout(ctx context.Context, token string) error {
	tok, err := c.effectiveToken(token)
	if err != nil {
		return err
	}

	err = c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil, requestOpts{
		name:     "logout",
		fallback: "logout failed",
		token:    tok,
	})
	if err != nil {
		c.log.Warn("remote logout failed", "err", err)
	}

	c.clearSession()
	return nil
}

// LogoutAll ends every session for the user. Local state is cleared
// regardless of the remote outcome, but unlike Logout the remote error is
// returned: the caller should know other sessions may still be live.
func (c *Client) LogoutAll(ctx context.Context, token string) error {
	tok, err := c.effectiveToken(token)
	if err != nil {
		return err
	}

	err = c.doJSON(ctx, http.MethodPost, "/auth/logout-all", nil, nil, requestOpts{
		name:     "logout_all",
		fallback: "logout all failed",
		token:    tok,
	})

	c.clearSession()
	return err
}

// clearSession drops the current token and the entire verification cache.
func (c *Client) clearSession() {
	c.cache.clear()
	c.setToken("")
}
