package apiclient

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Nil is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the timeout of the HTTP client configured so far. The
// client is copied, a caller supplied one is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithNavigation attaches cancellable requests to the navigation's epochs.
func WithNavigation(n *Navigation) Option {
	return func(c *Client) { c.navigation = n }
}

// WithTokenSource sets the session used when a request carries no token.
// Clients of a tab use their guard; server side clients leave it unset and
// resolve the per-request session from the context instead.
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) { c.tokens = src }
}

// WithReloader sets the hook invoked when the API reports that the session
// was forcibly invalidated.
func WithReloader(reload func()) Option {
	return func(c *Client) { c.reload = reload }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
