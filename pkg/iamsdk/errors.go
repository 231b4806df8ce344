package iamsdk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoToken is returned when an operation needs a token and neither an
// explicit one was given nor a current token is set on the client.
var ErrNoToken = errors.New("no token available")

// ============================================================================
// APIError
// ============================================================================

// APIError is the single error type surfaced by every failed API operation.
// Message is a human-readable normalization of whatever the service returned;
// StatusCode, Body and Fields are kept for programmatic branching.
type APIError struct {
	// Op is the operation's fallback description (e.g., "login failed")
	Op string

	// Message is the normalized human-readable error text
	Message string

	// StatusCode is the HTTP status code (0 for transport-level failures)
	StatusCode int

	// Body is the raw response body, if any
	Body []byte

	// Fields holds field-specific validation errors in document order
	Fields FieldErrors

	// Err is the underlying transport or decoding error, if any
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// ============================================================================
// Field Errors
// ============================================================================

// FieldError holds the validation messages for a single field.
type FieldError struct {
	Field    string
	Messages []string
}

// FieldErrors is an ordered list of field validation errors. Order matches
// the response document, which matters when only the first message is shown.
type FieldErrors []FieldError

// Get returns the messages for a field, or nil if the field has none.
func (f FieldErrors) Get(field string) []string {
	for _, fe := range f {
		if fe.Field == field {
			return fe.Messages
		}
	}
	return nil
}

// parseFieldErrors decodes an {"field": ["msg", ...]} object preserving key
// order. encoding/json maps randomize iteration order, so this walks the
// token stream instead. Values may be arrays of strings or single strings.
// Malformed input yields nil rather than an error; field details are
// best-effort decoration on an already-failed request.
func parseFieldErrors(raw json.RawMessage) FieldErrors {
	if len(raw) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}

	var fields FieldErrors
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil
		}

		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil
		}

		var msgs []string
		if len(val) > 0 && val[0] == '"' {
			var single string
			if err := json.Unmarshal(val, &single); err != nil {
				continue
			}
			msgs = []string{single}
		} else if err := json.Unmarshal(val, &msgs); err != nil {
			continue
		}

		if len(msgs) > 0 {
			fields = append(fields, FieldError{Field: key, Messages: msgs})
		}
	}

	return fields
}

// ============================================================================
// Error Normalization
// ============================================================================

// errorBody is the wire shape of structured error responses.
type errorBody struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

// normalizeTransportError wraps a failure that produced no HTTP response
// (network error, timeout, context cancellation, request construction).
func normalizeTransportError(op string, err error) *APIError {
	return &APIError{
		Op:      op,
		Message: fmt.Sprintf("%s: %v", op, err),
		Err:     err,
	}
}

// normalizeHTTPError converts a non-2xx response into an APIError. When
// preferDetail is set and the body carries field validation errors, the first
// field's first message wins over the generic top-level message.
func normalizeHTTPError(op string, resp *http.Response, body []byte, preferDetail bool) *APIError {
	apiErr := &APIError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       body,
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Fields = parseFieldErrors(parsed.Errors)

		if preferDetail && len(apiErr.Fields) > 0 {
			apiErr.Message = apiErr.Fields[0].Messages[0]
			return apiErr
		}
		if parsed.Message != "" {
			apiErr.Message = parsed.Message
			return apiErr
		}
		if len(apiErr.Fields) > 0 {
			apiErr.Message = joinFieldErrors(apiErr.Fields)
			return apiErr
		}
	}

	apiErr.Message = fmt.Sprintf("%s: HTTP %d %s", op, resp.StatusCode, http.StatusText(resp.StatusCode))
	return apiErr
}

// joinFieldErrors renders "field: msg1, msg2; field2: msg" across all fields.
func joinFieldErrors(fields FieldErrors) string {
	parts := make([]string, 0, len(fields))
	for _, fe := range fields {
		parts = append(parts, fe.Field+": "+strings.Join(fe.Messages, ", "))
	}
	return strings.Join(parts, "; ")
}
