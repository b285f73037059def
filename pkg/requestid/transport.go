package requestid

import "net/http"

type transport struct {
	base http.RoundTripper
}

// Transport forwards the request ID of the outgoing request's context in the
// Header, so API logs correlate with the page request that caused them.
// A nil base uses http.DefaultTransport.
func Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return transport{base: base}
}

func (t transport) RoundTrip(r *http.Request) (*http.Response, error) {
	id := FromContext(r.Context())
	if id == "" || r.Header.Get(Header) != "" {
		return t.base.RoundTrip(r)
	}
	r = r.Clone(r.Context())
	r.Header.Set(Header, id)
	return t.base.RoundTrip(r)
}
