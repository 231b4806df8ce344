package iamsdk

import (
	"crypto/tls"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout applies uniformly to every request. There is no
	// per-call override and no retry.
	DefaultTimeout = 10 * time.Second

	// DefaultCacheTTL is how long a token verification result is served
	// from cache before a live request is issued again.
	DefaultCacheTTL = 60 * time.Second
)

// Client is a client for a remote IAM service. It owns the current session
// token and the token-verification cache; nothing is shared across instances.
//
// A Client is safe for concurrent use, but overlapping login/refresh/logout
// calls are not coordinated beyond last-writer-wins on the current token.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *slog.Logger
	limiter *rate.Limiter
	metrics *metrics
	cache   *verifyCache

	mu        sync.RWMutex
	token     string
	observers map[int]func(old, new string)
	nextObs   int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithTimeout sets the uniform per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

// WithInsecureSkipVerify disables TLS certificate verification.
// Only intended for development against self-signed endpoints.
// A transport installed by an earlier WithHTTPClient is kept; its TLS
// config is adjusted in place.
func WithInsecureSkipVerify() Option {
	return func(c *Client) {
		var tr *http.Transport
		switch t := c.httpc.Transport.(type) {
		case *http.Transport:
			tr = t.Clone()
		case nil:
			tr = http.DefaultTransport.(*http.Transport).Clone()
		default:
			// Unknown RoundTripper, nothing to adjust safely.
			return
		}
		if tr.TLSClientConfig == nil {
			tr.TLSClientConfig = &tls.Config{}
		}
		tr.TLSClientConfig.InsecureSkipVerify = true
		c.httpc.Transport = tr
	}
}

// WithCacheTTL sets the verification cache TTL. The TTL is fixed at
// construction and applies to all entries uniformly.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) { c.cache = newVerifyCache(d) }
}

// WithLogger sets a structured logger for the client. Authorization check
// failures are logged here rather than surfaced to callers.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithRateLimit throttles outgoing requests with a token-bucket limiter.
// Waiting honours the request context.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, burst) }
}

// WithMetrics registers request and cache metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) { c.metrics = newMetrics(reg) }
}

// New creates a client for the IAM service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc: &http.Client{
			Timeout: DefaultTimeout,
		},
		log:       slog.Default(),
		cache:     newVerifyCache(DefaultCacheTTL),
		observers: make(map[int]func(old, new string)),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ============================================================================
// Token State
// ============================================================================

// Token returns the current session token, or "" when none is set.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the current session token with one obtained externally.
func (c *Client) SetToken(token string) {
	c.setToken(token)
}

// ClearToken removes the current token and invalidates its cache entry, so a
// later verification of the same token string is a guaranteed miss.
func (c *Client) ClearToken() {
	c.mu.Lock()
	old := c.token
	c.token = ""
	obs := c.observerSnapshot()
	c.mu.Unlock()

	if old != "" {
		c.cache.invalidate(old)
		notifyObservers(obs, old, "")
	}
}

// ClearCache drops every cached verification result.
func (c *Client) ClearCache() {
	c.cache.clear()
}

// OnTokenChange registers fn to be called whenever the current token changes
// (login, refresh, external set, clear). The returned cancel func removes the
// registration. Observers run synchronously on the mutating goroutine.
func (c *Client) OnTokenChange(fn func(old, new string)) (cancel func()) {
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// setToken updates the token and notifies observers outside the lock.
func (c *Client) setToken(token string) {
	c.mu.Lock()
	old := c.token
	c.token = token
	obs := c.observerSnapshot()
	c.mu.Unlock()

	if old != token {
		notifyObservers(obs, old, token)
	}
}

// observerSnapshot copies registered observers; callers must hold c.mu.
func (c *Client) observerSnapshot() []func(old, new string) {
	if len(c.observers) == 0 {
		return nil
	}
	obs := make([]func(old, new string), 0, len(c.observers))
	for _, fn := range c.observers {
		obs = append(obs, fn)
	}
	return obs
}

func notifyObservers(obs []func(old, new string), old, new string) {
	for _, fn := range obs {
		fn(old, new)
	}
}

// effectiveToken resolves an explicit token argument against the current
// token. An empty explicit token means "use current"; having neither is
// ErrNoToken.
func (c *Client) effectiveToken(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if tok := c.Token(); tok != "" {
		return tok, nil
	}
	return "", ErrNoToken
}
