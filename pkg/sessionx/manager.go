package sessionx

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/veritasid/iam-go/pkg/iamsdk"
)

// DefaultStorageKey is the key sessions are persisted under unless
// WithStorageKey overrides it.
const DefaultStorageKey = "iam_token"

// DefaultRefreshBuffer is how long before token expiry AutoRefresh renews.
const DefaultRefreshBuffer = 30 * time.Second

// State is a point-in-time snapshot of the session.
type State struct {
	Authenticated bool
	Token         string
	User          *iamsdk.User
	Permissions   []string
	Roles         []string
}

// Manager mirrors an iamsdk.Client's session into observable state and
// persists the token through a TokenStore. It is the bridge between the
// client's imperative API and application code that wants to react to
// login/logout transitions.
type Manager struct {
	client *iamsdk.Client
	store  TokenStore
	key    string
	log    *slog.Logger

	mu    sync.RWMutex
	state State

	subMu   sync.Mutex
	subs    map[int]chan State
	nextSub int
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithStorageKey sets the key the token is persisted under.
func WithStorageKey(key string) ManagerOption {
	return func(m *Manager) { m.key = key }
}

// WithLogger sets a structured logger for the manager.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a session manager over client and store.
func NewManager(client *iamsdk.Client, store TokenStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		client: client,
		store:  store,
		key:    DefaultStorageKey,
		log:    slog.Default(),
		subs:   make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init restores a persisted session. If a token is stored it is set on the
// client and re-verified; a verification failure wipes the persisted token
// and leaves the manager logged out (that is not an error). Store read
// failures are returned.
func (m *Manager) Init(ctx context.Context) error {
	token, err := m.store.Load(m.key)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	m.client.SetToken(token)
	ident, err := m.client.VerifyToken(ctx, token)
	if err != nil {
		m.log.Info("persisted session rejected, clearing", "err", err)
		m.clearAll(ctx, false)
		return nil
	}

	m.setState(token, ident)
	return nil
}

// Login authenticates with email/password. Success updates state and
// persists the token; failure clears all session state and returns the
// client's error.
func (m *Manager) Login(ctx context.Context, email, password string) (*iamsdk.AuthResult, error) {
	res, err := m.client.Login(ctx, iamsdk.LoginRequest{Email: email, Password: password})
	if err != nil {
		m.clearAll(ctx, false)
		return nil, err
	}

	m.persist(res.Token)
	m.setState(res.Token, &res.Identity)
	return res, nil
}

// LoginWithPhone authenticates with phone/OTP. Same state handling as Login.
func (m *Manager) LoginWithPhone(ctx context.Context, phone, otp string) (*iamsdk.AuthResult, error) {
	res, err := m.client.LoginWithPhone(ctx, iamsdk.PhoneLoginRequest{Phone: phone, OTP: otp})
	if err != nil {
		m.clearAll(ctx, false)
		return nil, err
	}

	m.persist(res.Token)
	m.setState(res.Token, &res.Identity)
	return res, nil
}

// Logout ends the session. The remote call is best-effort; local and
// persisted state are always cleared.
func (m *Manager) Logout(ctx context.Context) error {
	m.clearAll(ctx, true)
	return nil
}

// RefreshUser re-verifies the current token and refreshes the user snapshot.
// Any verification failure is treated as session termination, not a
// transient error: state is cleared and the error returned.
func (m *Manager) RefreshUser(ctx context.Context) error {
	st := m.State()
	if !st.Authenticated {
		return nil
	}

	ident, err := m.client.VerifyToken(ctx, st.Token)
	if err != nil {
		m.clearAll(ctx, false)
		return err
	}

	m.setState(st.Token, ident)
	return nil
}

// HasPermission reports whether the session's user holds the permission.
// Returns false immediately when logged out, otherwise delegates to the
// client (which fails closed).
func (m *Manager) HasPermission(ctx context.Context, permission string) bool {
	st := m.State()
	if !st.Authenticated {
		return false
	}
	return m.client.HasPermission(ctx, permission, st.Token)
}

// HasRole reports whether the session's user holds the role. Same contract
// as HasPermission.
func (m *Manager) HasRole(ctx context.Context, role string) bool {
	st := m.State()
	if !st.Authenticated {
		return false
	}
	return m.client.HasRole(ctx, role, st.Token)
}

// State returns a snapshot of the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Subscribe registers for state-change notifications. The channel holds the
// latest state only: a slow receiver sees the newest snapshot, not every
// intermediate one. The cancel func releases the subscription; sends never
// block the manager.
func (m *Manager) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.subMu.Unlock()

	cancel := func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
	return ch, cancel
}

// AutoRefresh renews the session token shortly before it expires, buffer
// ahead of the JWT exp claim (DefaultRefreshBuffer when buffer <= 0). It
// blocks until ctx is done, the session ends, the token is opaque (no
// readable expiry), or a refresh fails.
func (m *Manager) AutoRefresh(ctx context.Context, buffer time.Duration) {
	if buffer <= 0 {
		buffer = DefaultRefreshBuffer
	}

	for {
		st := m.State()
		if !st.Authenticated {
			return
		}
		exp, ok := tokenExpiry(st.Token)
		if !ok {
			return
		}

		wait := time.Until(exp.Add(-buffer))
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		res, err := m.client.RefreshToken(ctx, st.Token)
		if err != nil {
			m.log.Warn("auto refresh failed", "err", err)
			return
		}

		m.persist(res.Token)
		m.mu.Lock()
		m.state.Token = res.Token
		st = m.state
		m.mu.Unlock()
		m.publish(st)
	}
}

func (m *Manager) setState(token string, ident *iamsdk.Identity) {
	st := State{
		Authenticated: true,
		Token:         token,
	}
	if ident != nil {
		st.User = ident.User
		st.Permissions = ident.Permissions
		st.Roles = ident.Roles
	}

	m.mu.Lock()
	m.state = st
	m.mu.Unlock()
	m.publish(st)
}

// clearAll wipes reactive, client, and persisted state. remoteLogout also
// attempts a best-effort server-side logout first.
func (m *Manager) clearAll(ctx context.Context, remoteLogout bool) {
	if remoteLogout {
		if tok := m.State().Token; tok != "" {
			_ = m.client.Logout(ctx, tok) // best-effort, client logs failures
		}
	}

	m.client.ClearToken()
	if err := m.store.Clear(m.key); err != nil {
		m.log.Warn("failed to clear persisted token", "err", err)
	}

	m.mu.Lock()
	m.state = State{}
	m.mu.Unlock()
	m.publish(State{})
}

func (m *Manager) persist(token string) {
	if err := m.store.Save(m.key, token); err != nil {
		// Login still succeeded; the session just won't survive a restart.
		m.log.Warn("failed to persist token", "err", err)
	}
}

// publish delivers st to every subscriber, replacing any undelivered older
// snapshot.
func (m *Manager) publish(st State) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for _, ch := range m.subs {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}
