/*
Package iamsdk provides a client for a remote Identity and Access Management
service.

# Overview

The package wraps the IAM HTTP API behind a single Client type: authentication
(login, token verification, refresh, logout, phone OTP), authorization checks
(permission and role), and CRUD accessors for users, departments and
positions. Every operation is one HTTP round trip; the only client-side state
is the current session token and a short-TTL verification cache.

Create a Client and log in:

	client := iamsdk.New("https://iam.example.com")

	res, err := client.Login(ctx, iamsdk.LoginRequest{
		Email:    "a@b.com",
		Password: "secret",
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.User.Name, res.Permissions)

On success the returned token becomes the client's current token and is sent
as a bearer Authorization header on subsequent authenticated calls.

# Token Verification and Caching

VerifyToken confirms a token with the service and returns the associated
identity (user, reconciled permissions, role names):

	ident, err := client.VerifyToken(ctx, "") // "" means current token

Results are cached per token string for a fixed TTL (60s by default, see
WithCacheTTL). A hit skips the network entirely; expiry, ClearToken, Logout
and failed verifications invalidate entries. Concurrent verifications of the
same token are not de-duplicated, the later response silently wins.

# Permission Reconciliation

The service reports permissions both as a flat list on login/verification
responses and nested inside the user's role objects, sometimes as bare
strings and sometimes as {"name": ...} objects. The SDK merges both sources
into a single de-duplicated list ordered by first occurrence, exposed as
Identity.Permissions. The raw shapes never leak past the JSON boundary.

# Authorization Checks

HasPermission and HasRole issue dedicated check requests and fail closed:
any failure, whether an actual denial, an expired token, or an unreachable
service, is logged on the client's logger and reported as false. They never
return an error.

# Error Handling

Every failed operation returns an *APIError carrying a normalized
human-readable message, the HTTP status code, the raw response body, and
field validation errors in document order:

	_, err := client.Login(ctx, req)
	var apiErr *iamsdk.APIError
	if errors.As(err, &apiErr) {
		fmt.Println(apiErr.StatusCode, apiErr.Fields.Get("email"))
	}

Operations where field validation dominates (login, the phone/OTP flow)
prefer the first field's first message as the error text; entity CRUD uses
the top-level message with a method-specific fallback.

# Configuration

Behaviour is set through constructor options: WithTimeout (uniform request
timeout, 10s default), WithInsecureSkipVerify, WithCacheTTL, WithLogger,
WithRateLimit (client-side egress throttle), WithMetrics (prometheus
instrumentation), WithHTTPClient.

# Thread Safety

A Client is safe for concurrent use. Token state is lock-guarded and the
cache is mutex-protected, but overlapping login/refresh/logout calls are not
ordered: the last writer wins on the current token.
*/
package iamsdk
