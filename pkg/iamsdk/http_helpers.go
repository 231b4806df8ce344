package iamsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/veritasid/iam-go/pkg/idx"
)

// requestOpts carries per-operation request behaviour.
type requestOpts struct {
	// name labels the operation for metrics (e.g., "login", "list_users")
	name string

	// fallback is the operation-specific error prefix used when the
	// response carries nothing better (e.g., "login failed")
	fallback string

	// preferDetail prefers the first field validation message over the
	// top-level error message
	preferDetail bool

	// token, when non-empty, is sent as a bearer Authorization header
	token string
}

// url builds a complete URL by appending the path to the base URL.
func (c *Client) url(path string) string {
	return c.baseURL + path
}

// doJSON performs one JSON request/response round trip. Every failure comes
// back as an *APIError normalized per the operation's requestOpts.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, opts requestOpts) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return normalizeTransportError(opts.fallback, err)
		}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return normalizeTransportError(opts.fallback, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return normalizeTransportError(opts.fallback, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", idx.New().String())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.metrics.observeRequest(opts.name, 0, time.Since(start))
		return normalizeTransportError(opts.fallback, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.metrics.observeRequest(opts.name, resp.StatusCode, time.Since(start))
	if err != nil {
		return normalizeTransportError(opts.fallback, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return normalizeHTTPError(opts.fallback, resp, respBody, opts.preferDetail)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return normalizeTransportError(opts.fallback, err)
		}
	}

	return nil
}
