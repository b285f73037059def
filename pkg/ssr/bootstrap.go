package ssr

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/paymybuddy/pkg/apiclient"
	"github.com/dmitrymomot/paymybuddy/pkg/authguard"
	"github.com/dmitrymomot/paymybuddy/pkg/cookie"
	"github.com/dmitrymomot/paymybuddy/pkg/logger"
	"github.com/dmitrymomot/paymybuddy/pkg/requestid"
)

// deferredMaxAge bounds how long a deferred load waits for its reload, in seconds.
const deferredMaxAge = 60

// Bootstrapper resolves the session of every server rendered request.
type Bootstrapper struct {
	api     *apiclient.Client
	cookies *cookie.Manager
	cfg     Config
	logger  *slog.Logger
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(b *Bootstrapper) {
		if cfg.CookieName != "" {
			b.cfg.CookieName = cfg.CookieName
		}
		if cfg.CookieMaxAge > 0 {
			b.cfg.CookieMaxAge = cfg.CookieMaxAge
		}
		b.cfg.Deferred = cfg.Deferred
	}
}

// WithSSRAuthentication toggles resolving the token on the first load of a
// page. When disabled the page is served as authenticating and the token is
// resolved when the placeholder reloads it.
func WithSSRAuthentication(enabled bool) Option {
	return func(b *Bootstrapper) {
		b.cfg.Deferred = !enabled
	}
}

// WithLogger sets the logger used for bootstrap failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bootstrapper) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a bootstrapper calling api and keeping the token in an
// encrypted cookie.
func New(api *apiclient.Client, cookies *cookie.Manager, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		api:     api,
		cookies: cookies,
		cfg:     DefaultConfig(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(logger.Component("ssr"))
	return b
}

// Middleware attaches a fresh guard to every request. The guard is resolved
// from the token cookie before the next handler runs, and its token changes
// are written back to the cookie.
func (b *Bootstrapper) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guard := b.Bootstrap(w, r)
		ctx := authguard.WithGuard(r.Context(), guard)
		ctx = apiclient.ContextWithTokenSource(ctx, guard)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Bootstrap builds the request's guard. A stale token deletes the cookie; any
// other failure is logged and the request proceeds anonymous.
func (b *Bootstrapper) Bootstrap(w http.ResponseWriter, r *http.Request) *authguard.Guard {
	ctx := r.Context()
	log := b.logger.With(logger.RequestID(requestid.FromContext(ctx)))

	token := b.readToken(ctx, r, log)

	var opts []authguard.Option
	if token != "" {
		opts = append(opts, authguard.WithSession(&authguard.Session{Token: token}))
	}
	guard := authguard.New(b.api, append(opts, authguard.WithLogger(b.logger))...)
	b.persist(guard, w, log)

	if token == "" {
		return guard
	}

	if b.cfg.Deferred && !b.resumeDeferred(w, r) {
		b.cookies.Set(w, b.cfg.deferredCookie(), "1", cookie.WithMaxAge(deferredMaxAge))
		guard.SetAuthenticating(true)
		return guard
	}

	ok, err := guard.Remember(ctx, token)
	switch {
	case err != nil:
		log.WarnContext(ctx, "session bootstrap failed, continuing anonymous", logger.Error(err))
		guard.Deserialize(nil, authguard.WithoutEmit())
	case !ok:
		log.DebugContext(ctx, "stale session token dropped")
	default:
		if u := guard.User(); u != nil {
			log.DebugContext(ctx, "session resolved", logger.UserID(u.ID))
		}
	}
	return guard
}

// SaveToken writes token into the session cookie.
func (b *Bootstrapper) SaveToken(w http.ResponseWriter, token string) error {
	return b.cookies.SetEncrypted(w, b.cfg.CookieName, token, cookie.WithMaxAge(int(b.cfg.CookieMaxAge.Seconds())))
}

// ClearToken deletes the session cookie.
func (b *Bootstrapper) ClearToken(w http.ResponseWriter) {
	b.cookies.Delete(w, b.cfg.CookieName)
}

// resumeDeferred reports whether the previous load deferred the session and
// consumes the marker.
func (b *Bootstrapper) resumeDeferred(w http.ResponseWriter, r *http.Request) bool {
	if _, err := b.cookies.Get(r, b.cfg.deferredCookie()); err != nil {
		return false
	}
	b.cookies.Delete(w, b.cfg.deferredCookie())
	return true
}

func (b *Bootstrapper) readToken(ctx context.Context, r *http.Request, log *slog.Logger) string {
	token, err := b.cookies.GetEncrypted(r, b.cfg.CookieName)
	switch {
	case err == nil:
		return token
	case errors.Is(err, cookie.ErrCookieNotFound):
	default:
		log.WarnContext(ctx, "unreadable session cookie ignored", logger.Error(err))
	}
	return ""
}

// persist mirrors token changes of guard into the cookie of w.
func (b *Bootstrapper) persist(guard *authguard.Guard, w http.ResponseWriter, log *slog.Logger) {
	guard.Subscribe(func(u authguard.Update) {
		if !u.IdentityChanged() {
			return
		}
		if u.Session.Token == "" {
			b.ClearToken(w)
			return
		}
		if err := b.SaveToken(w, u.Session.Token); err != nil {
			log.Error("failed to persist session token", logger.Error(err))
		}
	})
}
