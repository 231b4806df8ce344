package httpx

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veritasid/iam-go/pkg/iamsdk"
	"github.com/veritasid/iam-go/pkg/slogx"
)

// guardFixture is a fake IAM service plus counters for the calls a guard
// issues against it.
type guardFixture struct {
	srv *httptest.Server

	verifyCalls     atomic.Int64
	permissionCalls atomic.Int64
	roleCalls       atomic.Int64

	grantPermission atomic.Bool
	grantRole       atomic.Bool
}

func newGuardFixture(t *testing.T, validToken string) *guardFixture {
	t.Helper()

	f := &guardFixture{}
	f.grantPermission.Store(true)
	f.grantRole.Store(true)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		f.verifyCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+validToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthenticated"}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"user": {"id": 1, "name": "Ada", "roles": [{"id": 1, "name": "author"}]},
			"permissions": ["forms.create"]
		}`))
	})
	mux.HandleFunc("POST /auth/check-permission", func(w http.ResponseWriter, r *http.Request) {
		f.permissionCalls.Add(1)
		if f.grantPermission.Load() {
			_, _ = w.Write([]byte(`{"has_permission": true}`))
			return
		}
		_, _ = w.Write([]byte(`{"has_permission": false}`))
	})
	mux.HandleFunc("POST /auth/check-role", func(w http.ResponseWriter, r *http.Request) {
		f.roleCalls.Add(1)
		if f.grantRole.Load() {
			_, _ = w.Write([]byte(`{"has_role": true}`))
			return
		}
		_, _ = w.Write([]byte(`{"has_role": false}`))
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

// protected wraps a capture handler with the guard and a request-logging
// middleware, the way an application would mount it.
func protected(t *testing.T, cfg GuardConfig, gotIdentity **iamsdk.Identity) http.Handler {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotIdentity != nil {
			*gotIdentity = IdentityFromContext(r.Context())
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	log := slogx.New(slogx.Config{Name: "guard-test", Env: "test", Level: "error", Format: "json"})
	return slogx.HTTPMiddleware(log)(Guard(cfg)(inner))
}

func get(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGuardAllowsValidToken(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, "T-OK")
	client := iamsdk.New(f.srv.URL)

	var ident *iamsdk.Identity
	h := protected(t, GuardConfig{Client: client}, &ident)

	rec := get(t, h, "T-OK")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ident)
	require.Equal(t, "Ada", ident.User.Name)
	require.Equal(t, []string{"forms.create"}, ident.Permissions)
}

func TestGuardDeniesWithoutIssuingChecks(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, "T-OK")
	client := iamsdk.New(f.srv.URL)
	h := protected(t, GuardConfig{Client: client, Role: "admin"}, nil)

	// No token at all: denied locally, nothing reaches the service.
	rec := get(t, h, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
	require.EqualValues(t, 0, f.verifyCalls.Load())
	require.EqualValues(t, 0, f.roleCalls.Load())

	// Invalid token: verification fails and the role check is never issued.
	rec = get(t, h, "T-BAD")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.EqualValues(t, 1, f.verifyCalls.Load())
	require.EqualValues(t, 0, f.roleCalls.Load())
}

func TestGuardRejectsEmptyBearerToken(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, "T-OK")
	client := iamsdk.New(f.srv.URL)

	// The guard's client doubles as the app's service client and holds its
	// own session. An empty bearer token must not verify as that session.
	client.SetToken("T-OK")

	h := protected(t, GuardConfig{Client: client}, nil)

	for _, authz := range []string{"Bearer ", "Bearer    ", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", authz)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", authz)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
	}
	require.EqualValues(t, 0, f.verifyCalls.Load())
}

func TestGuardPermissionCheck(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, "T-OK")
	client := iamsdk.New(f.srv.URL)
	h := protected(t, GuardConfig{Client: client, Permission: "forms.create", Role: "admin"}, nil)

	rec := get(t, h, "T-OK")
	require.Equal(t, http.StatusOK, rec.Code)

	f.grantPermission.Store(false)
	rec = get(t, h, "T-OK")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="insufficient_scope"`)

	// Permission takes precedence: the role endpoint is never consulted.
	require.EqualValues(t, 0, f.roleCalls.Load())
	require.EqualValues(t, 2, f.permissionCalls.Load())
}

func TestGuardRoleCheck(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, "T-OK")
	client := iamsdk.New(f.srv.URL)
	h := protected(t, GuardConfig{Client: client, Role: "author"}, nil)

	rec := get(t, h, "T-OK")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, f.roleCalls.Load())

	f.grantRole.Store(false)
	rec = get(t, h, "T-OK")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGuardRedirectMode(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, "T-OK")
	client := iamsdk.New(f.srv.URL)
	h := protected(t, GuardConfig{Client: client, RedirectURL: "/login"}, nil)

	rec := get(t, h, "")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	rec = get(t, h, "T-BAD")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestGuardUsesVerificationCache(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, "T-OK")
	client := iamsdk.New(f.srv.URL)
	h := protected(t, GuardConfig{Client: client}, nil)

	for range 5 {
		rec := get(t, h, "T-OK")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.EqualValues(t, 1, f.verifyCalls.Load())
}

func TestTokenFromContext(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, "T-OK")
	client := iamsdk.New(f.srv.URL)

	var gotToken string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = TokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := Guard(GuardConfig{Client: client})(inner)

	rec := get(t, h, "T-OK")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "T-OK", gotToken)
}
