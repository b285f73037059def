package ssr

import "time"

// Config holds the server-side session bootstrap settings.
type Config struct {
	CookieName   string        `env:"AUTH_COOKIE_NAME" envDefault:"auth_token"`
	CookieMaxAge time.Duration `env:"AUTH_COOKIE_MAX_AGE" envDefault:"720h"`
	// Deferred serves the first load of a page as authenticating and resolves
	// the cookie on the reload that follows.
	Deferred bool `env:"SSR_DEFERRED" envDefault:"false"`
}

// DefaultConfig returns the defaults of Config.
func DefaultConfig() Config {
	return Config{
		CookieName:   "auth_token",
		CookieMaxAge: 30 * 24 * time.Hour,
	}
}

// deferredCookie names the one-shot marker set while a session is deferred.
func (c Config) deferredCookie() string {
	return c.CookieName + "_deferred"
}
