package pageguard

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/paymybuddy/handler"
	"github.com/dmitrymomot/paymybuddy/pkg/authguard"
)

const (
	DefaultLoginPath   = "/login"
	DefaultLandingPath = "/summary"
	DefaultReturnParam = "to"
)

// Requirement is the authentication state a page demands.
type Requirement int

const (
	IsAuthenticated Requirement = iota
	IsAnonymous
)

func (r Requirement) String() string {
	if r == IsAnonymous {
		return "anonymous"
	}
	return "authenticated"
}

// Outcome of a gate decision.
type Outcome int

const (
	// Allow renders the page.
	Allow Outcome = iota
	// Wait renders the placeholder until the guard settles.
	Wait
	// Redirect sends the visitor to Decision.URL.
	Redirect
)

// Decision is the result of checking a guard state against a requirement.
type Decision struct {
	Outcome Outcome
	URL     string
}

// Gate decides page access from the auth guard state.
type Gate struct {
	loginPath   string
	landingPath string
	returnParam string
	placeholder templ.Component
}

// Option configures a Gate.
type Option func(*Gate)

// WithLoginPath sets the page receiving unauthenticated visitors.
func WithLoginPath(p string) Option {
	return func(g *Gate) {
		if p != "" {
			g.loginPath = p
		}
	}
}

// WithLandingPath sets the page receiving authenticated visitors of
// anonymous-only pages.
func WithLandingPath(p string) Option {
	return func(g *Gate) {
		if p != "" {
			g.landingPath = p
		}
	}
}

// WithReturnParam sets the login query parameter carrying the return path.
func WithReturnParam(name string) Option {
	return func(g *Gate) {
		if name != "" {
			g.returnParam = name
		}
	}
}

// WithPlaceholder sets the component rendered while authenticating.
func WithPlaceholder(c templ.Component) Option {
	return func(g *Gate) {
		if c != nil {
			g.placeholder = c
		}
	}
}

// New creates a gate with the default login and landing pages.
func New(opts ...Option) *Gate {
	g := &Gate{
		loginPath:   DefaultLoginPath,
		landingPath: DefaultLandingPath,
		returnParam: DefaultReturnParam,
		placeholder: Placeholder(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Decide checks state against req for a page at path. path is the request
// URI to return to after login.
func (g *Gate) Decide(state authguard.State, req Requirement, path string) Decision {
	if state == authguard.Authenticating {
		return Decision{Outcome: Wait}
	}

	authenticated := state == authguard.Authenticated
	switch {
	case req == IsAuthenticated && !authenticated:
		return Decision{Outcome: Redirect, URL: g.LoginURL(path)}
	case req == IsAnonymous && authenticated:
		return Decision{Outcome: Redirect, URL: g.landingPath}
	}
	return Decision{Outcome: Allow}
}

// LoginURL returns the login page URL returning to path.
func (g *Gate) LoginURL(path string) string {
	if path == "" {
		return g.loginPath
	}
	return g.loginPath + "?" + g.returnParam + "=" + url.QueryEscape(path)
}

// Middleware applies the gate to every request. The request's guard is set by
// the SSR bootstrap; a request without one is treated as anonymous.
func (g *Gate) Middleware(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := authguard.Anonymous
			if guard, ok := authguard.FromContext(r.Context()); ok {
				state = guard.State()
			}

			d := g.Decide(state, req, r.URL.RequestURI())
			switch d.Outcome {
			case Allow:
				next.ServeHTTP(w, r)
				return
			case Wait:
				w.Header().Set("Cache-Control", "no-store")
				_ = handler.Templ(g.placeholder).Render(w, r)
			case Redirect:
				_ = handler.Redirect(d.URL).Render(w, r)
			}
		})
	}
}

// Placeholder is the default loading component. It asks the browser to
// refresh once the session had time to settle.
func Placeholder() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div id="page" class="page-loading" data-on-load="setTimeout(() => location.reload(), 500)" aria-busy="true"></div>`)
		return err
	})
}
