package cookie

import "net/http"

// attributes are the cookie fields a Manager applies to what it writes.
type attributes struct {
	path     string
	domain   string
	maxAge   int
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

// Option overrides an attribute, either as a Manager default or per cookie.
type Option func(*attributes)

func WithPath(path string) Option {
	return func(a *attributes) { a.path = path }
}

func WithDomain(domain string) Option {
	return func(a *attributes) { a.domain = domain }
}

// WithMaxAge sets the lifetime in seconds. Zero makes a session cookie.
func WithMaxAge(seconds int) Option {
	return func(a *attributes) { a.maxAge = seconds }
}

func WithSecure(secure bool) Option {
	return func(a *attributes) { a.secure = secure }
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(a *attributes) { a.httpOnly = httpOnly }
}

func WithSameSite(sameSite http.SameSite) Option {
	return func(a *attributes) { a.sameSite = sameSite }
}

// apply returns a copy of a with opts applied.
func (a attributes) apply(opts []Option) attributes {
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

func (a attributes) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     a.path,
		Domain:   a.domain,
		MaxAge:   a.maxAge,
		Secure:   a.secure,
		HttpOnly: a.httpOnly,
		SameSite: a.sameSite,
	}
}
