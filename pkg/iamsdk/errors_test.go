package iamsdk

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func httpErr(status int) *http.Response {
	return &http.Response{StatusCode: status}
}

func TestNormalizeHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("prefer detail picks first field's first message", func(t *testing.T) {
		body := []byte(`{"errors":{"otp":["Invalid code"]},"message":"Bad request"}`)
		err := normalizeHTTPError("login failed", httpErr(422), body, true)

		require.Equal(t, "Invalid code", err.Error())
		require.Equal(t, 422, err.StatusCode)
		require.Equal(t, body, err.Body)
	})

	t.Run("without preference the top-level message wins", func(t *testing.T) {
		body := []byte(`{"errors":{"otp":["Invalid code"]},"message":"Bad request"}`)
		err := normalizeHTTPError("login failed", httpErr(422), body, false)

		require.Equal(t, "Bad request", err.Error())
	})

	t.Run("no message falls back to joined field errors", func(t *testing.T) {
		body := []byte(`{"errors":{"phone":["Required","Must be E.164"],"otp":["Invalid code"]}}`)
		err := normalizeHTTPError("phone login failed", httpErr(422), body, false)

		require.Equal(t, "phone: Required, Must be E.164; otp: Invalid code", err.Error())
	})

	t.Run("unparseable body falls back to the op", func(t *testing.T) {
		err := normalizeHTTPError("logout failed", httpErr(500), []byte("<html>boom</html>"), false)

		require.Equal(t, "logout failed: HTTP 500 Internal Server Error", err.Error())
	})

	t.Run("empty body falls back to the op", func(t *testing.T) {
		err := normalizeHTTPError("failed to get user", httpErr(404), nil, false)

		require.Equal(t, "failed to get user: HTTP 404 Not Found", err.Error())
	})

	t.Run("field errors are inspectable", func(t *testing.T) {
		body := []byte(`{"errors":{"email":["Taken"]}}`)
		err := normalizeHTTPError("failed to create user", httpErr(422), body, false)

		require.Equal(t, []string{"Taken"}, err.Fields.Get("email"))
		require.Nil(t, err.Fields.Get("phone"))
	})
}

func TestNormalizeTransportError(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	err := normalizeTransportError("login failed", cause)

	require.Equal(t, "login failed: dial tcp: connection refused", err.Error())
	require.ErrorIs(t, err, cause)
	require.Zero(t, err.StatusCode)
}

func TestParseFieldErrorsPreservesOrder(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`{"zeta":["z"],"alpha":["a1","a2"],"mid":["m"]}`)
	fields := parseFieldErrors(raw)

	require.Len(t, fields, 3)
	require.Equal(t, "zeta", fields[0].Field)
	require.Equal(t, "alpha", fields[1].Field)
	require.Equal(t, []string{"a1", "a2"}, fields[1].Messages)
	require.Equal(t, "mid", fields[2].Field)
}

func TestParseFieldErrorsShapes(t *testing.T) {
	t.Parallel()

	t.Run("single string value", func(t *testing.T) {
		fields := parseFieldErrors(json.RawMessage(`{"otp":"Invalid code"}`))
		require.Equal(t, FieldErrors{{Field: "otp", Messages: []string{"Invalid code"}}}, fields)
	})

	t.Run("not an object", func(t *testing.T) {
		require.Nil(t, parseFieldErrors(json.RawMessage(`["oops"]`)))
	})

	t.Run("empty input", func(t *testing.T) {
		require.Nil(t, parseFieldErrors(nil))
	})
}
