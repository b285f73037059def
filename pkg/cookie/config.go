package cookie

import (
	"net/http"
	"strings"
)

// Config holds the default cookie attributes and the encryption secrets.
// Secrets are comma separated, newest first.
type Config struct {
	Secrets  []string      `env:"COOKIE_SECRETS" envSeparator:","`
	Path     string        `env:"COOKIE_PATH" envDefault:"/"`
	Domain   string        `env:"COOKIE_DOMAIN"`
	MaxAge   int           `env:"COOKIE_MAX_AGE" envDefault:"0"`
	Secure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	HttpOnly bool          `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	SameSite http.SameSite `env:"COOKIE_SAME_SITE" envDefault:"2"` // lax
}

// DefaultConfig returns Config without secrets.
func DefaultConfig() Config {
	return Config{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// NewFromConfig creates a Manager from cfg. Empty attributes keep the
// Manager defaults; opts are applied last.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	secrets := make([]string, 0, len(cfg.Secrets))
	for _, s := range cfg.Secrets {
		secrets = append(secrets, strings.TrimSpace(s))
	}

	attrs := []Option{WithSecure(cfg.Secure), WithHTTPOnly(cfg.HttpOnly)}
	if cfg.Path != "" {
		attrs = append(attrs, WithPath(cfg.Path))
	}
	if cfg.Domain != "" {
		attrs = append(attrs, WithDomain(cfg.Domain))
	}
	if cfg.MaxAge != 0 {
		attrs = append(attrs, WithMaxAge(cfg.MaxAge))
	}
	if cfg.SameSite != 0 {
		attrs = append(attrs, WithSameSite(cfg.SameSite))
	}

	return New(secrets, append(attrs, opts...)...)
}
