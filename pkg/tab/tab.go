package tab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/dmitrymomot/paymybuddy/pkg/apiclient"
	"github.com/dmitrymomot/paymybuddy/pkg/authguard"
	"github.com/dmitrymomot/paymybuddy/pkg/authsync"
	"github.com/dmitrymomot/paymybuddy/pkg/logger"
	"github.com/dmitrymomot/paymybuddy/pkg/pageguard"
	"github.com/dmitrymomot/paymybuddy/pkg/webstorage"
)

var (
	ErrNoStorage      = errors.New("tab: storage is required")
	ErrAlreadyMounted = errors.New("tab: already mounted")
	ErrClosed         = errors.New("tab: closed")
	// ErrRemember is returned by Mount when the persisted token could not be
	// remembered. The tab stays usable with an anonymous session.
	ErrRemember       = errors.New("tab: remember persisted session")
)

// Config describes the environment of a tab.
type Config struct {
	// BaseURL of the API.
	BaseURL string
	// HTTPClient used for API calls. Optional.
	HTTPClient *http.Client
	// Storage shared with the other tabs.
	Storage webstorage.Storage
	// Tokens overrides the persisted token slot. Defaults to the
	// "auth_token" key of Storage.
	Tokens authsync.TokenStore
	// Reloader is invoked after the tab started a new navigation because the
	// page must be reloaded. Optional.
	Reloader func()
	// Gate decides page access on Visit. Defaults to pageguard.New().
	Gate   *pageguard.Gate
	Logger *slog.Logger
}

// Tab is the client-side runtime of one browser tab: a navigation, an API
// client bound to it, the tab's auth guard and its cross-tab syncer.
type Tab struct {
	cfg    Config
	nav    *apiclient.Navigation
	api    *apiclient.Client
	guard  *authguard.Guard
	syncer *authsync.Syncer
	gate   *pageguard.Gate
	logger *slog.Logger

	// persisted is the token found in the shared slot when the tab opened.
	persisted string

	mu          sync.Mutex
	path        string
	reloads     int
	mounted     bool
	closed      bool
	unsubscribe func()
}

// Open creates a tab hydrated from the server rendered session. When the
// hydrated token differs from the persisted one the guard stays
// Authenticating until Mount resolves it.
func Open(ctx context.Context, cfg Config, hydrated *authguard.Session) (*Tab, error) {
	if cfg.Storage == nil {
		return nil, ErrNoStorage
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Gate == nil {
		cfg.Gate = pageguard.New()
	}

	t := &Tab{
		cfg:    cfg,
		nav:    apiclient.NewNavigation(),
		gate:   cfg.Gate,
		logger: cfg.Logger.With(logger.Component("tab"), slog.String("origin", cfg.Storage.Origin())),
	}

	t.api = apiclient.New(cfg.BaseURL,
		apiclient.WithHTTPClient(cfg.HTTPClient),
		apiclient.WithNavigation(t.nav),
		apiclient.WithTokenSource(apiclient.TokenSourceFunc(func() string { return t.guard.Token() })),
		apiclient.WithReloader(t.Reload),
		apiclient.WithLogger(cfg.Logger),
	)
	t.guard = authguard.New(t.api, authguard.WithSession(hydrated), authguard.WithLogger(cfg.Logger))

	syncOpts := []authsync.Option{authsync.WithLogger(cfg.Logger)}
	if cfg.Tokens != nil {
		syncOpts = append(syncOpts, authsync.WithTokenStore(cfg.Tokens))
	}
	t.syncer = authsync.New(t.guard, cfg.Storage, syncOpts...)

	persisted, err := t.syncer.Tokens().LoadToken(ctx)
	if err != nil {
		t.nav.Close()
		return nil, fmt.Errorf("tab: load persisted token: %w", err)
	}
	t.persisted = persisted
	if persisted != t.guard.Token() {
		t.guard.SetAuthenticating(true)
	}

	return t, nil
}

// Mount starts the cross-tab sync and reconciles the hydrated session with
// the persisted token: a different token is remembered, a missing one clears
// the session. Identity changes from then on reload the tab.
func (t *Tab) Mount(ctx context.Context) error {
	t.mu.Lock()
	switch {
	case t.closed:
		t.mu.Unlock()
		return ErrClosed
	case t.mounted:
		t.mu.Unlock()
		return ErrAlreadyMounted
	}
	t.mounted = true
	t.unsubscribe = t.guard.Subscribe(t.onUpdated)
	t.mu.Unlock()

	if err := t.syncer.Start(ctx); err != nil {
		return fmt.Errorf("tab: start sync: %w", err)
	}

	defer t.guard.SetAuthenticating(false)

	if t.persisted == t.guard.Token() {
		return nil
	}
	if t.persisted == "" {
		t.guard.Deserialize(&authguard.Session{})
		return nil
	}

	if _, err := t.guard.Remember(ctx, t.persisted); err != nil {
		t.logger.WarnContext(ctx, "failed to remember persisted session", logger.Error(err))
		t.guard.Deserialize(nil, authguard.WithoutEmit())
		return fmt.Errorf("%w: %w", ErrRemember, err)
	}
	return nil
}

func (t *Tab) onUpdated(u authguard.Update) {
	if !u.IdentityChanged() {
		return
	}
	t.logger.Debug("session identity changed, reloading",
		slog.String("update_origin", u.Origin.String()),
		slog.Bool("authenticated", u.Session.Authenticated()),
	)
	t.Reload()
}

// Navigate starts a navigation to path. Cancellable requests of the previous
// page are aborted.
func (t *Tab) Navigate(path string) {
	t.nav.Start()
	t.mu.Lock()
	t.path = path
	t.mu.Unlock()
}

// Visit navigates to path gated by req. A redirect decision navigates to the
// redirect target instead. The decision is returned either way.
func (t *Tab) Visit(path string, req pageguard.Requirement) pageguard.Decision {
	d := t.gate.Decide(t.guard.State(), req, path)
	switch d.Outcome {
	case pageguard.Redirect:
		t.Navigate(d.URL)
	default:
		t.Navigate(path)
	}
	return d
}

// Reload restarts the current page: in-flight cancellable requests are
// aborted and the configured reloader runs.
func (t *Tab) Reload() {
	t.nav.Start()
	t.mu.Lock()
	t.reloads++
	t.mu.Unlock()
	if t.cfg.Reloader != nil {
		t.cfg.Reloader()
	}
}

// Path returns the path of the current navigation.
func (t *Tab) Path() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.path
}

// Reloads returns how many times the tab was reloaded.
func (t *Tab) Reloads() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reloads
}

// Guard returns the tab's auth guard.
func (t *Tab) Guard() *authguard.Guard { return t.guard }

// API returns the tab's API client. Requests without an explicit token use
// the guard's session.
func (t *Tab) API() *apiclient.Client { return t.api }

// Context returns ctx carrying the tab's guard.
func (t *Tab) Context(ctx context.Context) context.Context {
	return authguard.WithGuard(ctx, t.guard)
}

// Close stops the sync and aborts the current navigation. The storage is
// owned by the caller and stays open.
func (t *Tab) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	unsubscribe := t.unsubscribe
	t.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	var err error
	if stopErr := t.syncer.Stop(); stopErr != nil && !errors.Is(stopErr, authsync.ErrNotStarted) {
		err = stopErr
	}
	t.nav.Close()
	return err
}
