package authguard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/dmitrymomot/paymybuddy/pkg/apiclient"
	"github.com/dmitrymomot/paymybuddy/pkg/logger"
)

// API endpoints used by the guard.
const (
	EndpointLogin    = "auth/login"
	EndpointRemember = "auth/remember"
	EndpointLogout   = "auth/logout"
)

// CodeInvalidCredentials is the SERVICE code returned by a failed login.
const CodeInvalidCredentials = "INVALID_CREDENTIALS"

// ErrAborted is returned when a guard request was aborted before completing.
var ErrAborted = errors.New("authguard: request aborted")

// Guard owns the session of one rendering context: a single server request
// or a single tab. All methods are safe for concurrent use; when operations
// race, the last one to complete determines the final state.
type Guard struct {
	api    *apiclient.Client
	logger *slog.Logger

	mu             sync.RWMutex
	session        Session
	remembering    int
	authenticating bool

	listenersMu sync.Mutex
	listeners   []listenerEntry
	nextID      uint64
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the logger used to report recovered failures.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithSession hydrates the guard without emitting an update.
func WithSession(s *Session) Option {
	return func(g *Guard) {
		if s != nil {
			g.session = s.clone()
		}
	}
}

// New creates an anonymous guard backed by api.
func New(api *apiclient.Client, opts ...Option) *Guard {
	g := &Guard{
		api:    api,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(logger.Component("authguard"))
	return g
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type rememberResult struct {
	User User `json:"user"`
}

// Login authenticates with email and password. Invalid credentials return
// false with a nil error and leave the state unchanged.
func (g *Guard) Login(ctx context.Context, email, password string) (bool, error) {
	res, err := apiclient.Fetch[Session](ctx, g.api, apiclient.Request{
		Anonymous: true,
		URL:       EndpointLogin,
		Body:      credentials{Email: email, Password: password},
	})
	if err != nil {
		return false, fmt.Errorf("authguard: login: %w", err)
	}
	if !res.Success {
		switch {
		case apiclient.IsAborted(res):
			return false, ErrAborted
		case res.Error.Code == CodeInvalidCredentials:
			return false, nil
		default:
			return false, apiclient.Unhandled(res.Error)
		}
	}

	g.Deserialize(&res.Result)
	return true, nil
}

// Remember resolves a persisted token into a session. While the call is in
// flight the guard reports Authenticating. A stale token clears the state and
// returns false with a nil error.
func (g *Guard) Remember(ctx context.Context, token string) (bool, error) {
	if token == "" {
		g.Deserialize(nil)
		return false, nil
	}

	g.mu.Lock()
	g.remembering++
	g.mu.Unlock()

	res, err := apiclient.Fetch[rememberResult](ctx, g.api, apiclient.Request{
		AuthToken:   token,
		URL:         EndpointRemember,
		NeverCancel: true,
	})

	// Settle before emitting so listeners observe the final state.
	g.mu.Lock()
	g.remembering--
	g.mu.Unlock()

	if err != nil {
		if apiclient.IsInvalidToken(err) {
			g.Deserialize(nil)
			return false, nil
		}
		return false, fmt.Errorf("authguard: remember: %w", err)
	}
	if !res.Success {
		if apiclient.IsAborted(res) {
			return false, ErrAborted
		}
		return false, apiclient.Unhandled(res.Error)
	}

	user := res.Result.User
	g.Deserialize(&Session{Token: token, User: &user})
	return true, nil
}

// Logout ends the session. Local state is always cleared, a failure of the
// remote call is only logged.
func (g *Guard) Logout(ctx context.Context) {
	req := apiclient.Request{
		Method:      http.MethodPost,
		URL:         EndpointLogout,
		NeverCancel: true,
	}
	if token := g.Token(); token != "" {
		req.AuthToken = token
	} else {
		req.Anonymous = true
	}

	if res, err := g.api.Do(ctx, req); err != nil {
		g.logger.WarnContext(ctx, "remote logout failed", logger.Event("logout"), logger.Error(err))
	} else if !res.Success && res.Error != nil {
		g.logger.WarnContext(ctx, "remote logout rejected", logger.Event("logout"), slog.String("code", res.Error.Code))
	}

	g.Deserialize(nil)
}

// DeserializeOption configures Deserialize.
type DeserializeOption func(*deserializeOptions)

type deserializeOptions struct {
	emit   bool
	origin Origin
}

// WithoutEmit replaces the state silently.
func WithoutEmit() DeserializeOption {
	return func(o *deserializeOptions) { o.emit = false }
}

// WithOrigin tags the emitted update.
func WithOrigin(origin Origin) DeserializeOption {
	return func(o *deserializeOptions) { o.origin = origin }
}

// Deserialize replaces the session wholesale; nil clears it. Every call emits
// exactly one update, even when the state is unchanged, unless WithoutEmit
// is given.
func (g *Guard) Deserialize(s *Session, opts ...DeserializeOption) {
	o := deserializeOptions{emit: true, origin: OriginLocal}
	for _, opt := range opts {
		opt(&o)
	}

	var next Session
	if s != nil {
		next = s.clone()
	}

	g.mu.Lock()
	prev := g.session
	g.session = next
	g.mu.Unlock()

	if o.emit {
		g.emit(Update{Session: next.clone(), Previous: prev, Origin: o.origin})
	}
}

// Serialize returns a snapshot of the session.
func (g *Guard) Serialize() Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session.clone()
}

// Token returns the current token. It implements apiclient.TokenSource.
func (g *Guard) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session.Token
}

// User returns a copy of the current user, or nil when not authenticated.
func (g *Guard) User() *User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session.clone().User
}

// Authenticated reports whether a user is present.
func (g *Guard) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session.User != nil
}

// State returns Authenticating while a remember is in flight or the guard is
// marked unsettled, and otherwise derives the state from the session.
func (g *Guard) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()

	switch {
	case g.remembering > 0 || g.authenticating:
		return Authenticating
	case g.session.User != nil:
		return Authenticated
	default:
		return Anonymous
	}
}

// SetAuthenticating marks the guard as unsettled until the owner resolves the
// persisted token, or settles it.
func (g *Guard) SetAuthenticating(v bool) {
	g.mu.Lock()
	g.authenticating = v
	g.mu.Unlock()
}

// Subscribe registers l for updates. Listeners are called in registration
// order. The returned function removes the listener.
func (g *Guard) Subscribe(l Listener) (unsubscribe func()) {
	g.listenersMu.Lock()
	defer g.listenersMu.Unlock()

	g.nextID++
	id := g.nextID
	g.listeners = append(g.listeners, listenerEntry{id: id, fn: l})

	var once sync.Once
	return func() {
		once.Do(func() {
			g.listenersMu.Lock()
			defer g.listenersMu.Unlock()
			for i, e := range g.listeners {
				if e.id == id {
					g.listeners = append(g.listeners[:i:i], g.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (g *Guard) emit(u Update) {
	g.listenersMu.Lock()
	listeners := make([]listenerEntry, len(g.listeners))
	copy(listeners, g.listeners)
	g.listenersMu.Unlock()

	for _, e := range listeners {
		e.fn(u)
	}
}
