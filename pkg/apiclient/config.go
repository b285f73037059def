package apiclient

import "time"

// Config holds the API client configuration.
type Config struct {
	BaseURL       string        `env:"API_URL" envDefault:"http://127.0.0.1:8081/"`
	ServerBaseURL string        `env:"SERVER_API_URL" envDefault:""` // overrides BaseURL for server side rendering
	Timeout       time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
}

// ServerURL returns the base URL used by server side clients.
func (c Config) ServerURL() string {
	if c.ServerBaseURL != "" {
		return c.ServerBaseURL
	}
	return c.BaseURL
}

// NewFromConfig creates a client for browser-like runtimes (tabs). The
// configured timeout applies to the HTTP client set by opts.
func NewFromConfig(cfg Config, opts ...Option) *Client {
	return New(cfg.BaseURL, append(opts, WithTimeout(cfg.Timeout))...)
}

// NewServerFromConfig creates a client for server side rendering.
func NewServerFromConfig(cfg Config, opts ...Option) *Client {
	return New(cfg.ServerURL(), append(opts, WithTimeout(cfg.Timeout))...)
}
