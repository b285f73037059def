package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
)

type redirectResponse struct {
	url  string
	code int
}

// Render performs the redirect, handling both DataStar and regular requests
func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	if IsDataStar(req) {
		sse := datastar.NewSSE(w, req)
		return sse.Redirect(r.url)
	}
	http.Redirect(w, req, r.url, r.code)
	return nil
}

// Redirect creates a redirect response with status 303 (See Other).
// For DataStar requests, it uses Server-Sent Events to trigger a client-side redirect.
func Redirect(url string) Response {
	return redirectResponse{url: url, code: http.StatusSeeOther}
}

// RedirectWithCode creates a redirect response with a specific status code.
func RedirectWithCode(url string, code int) Response {
	return redirectResponse{url: url, code: code}
}

// LocalPath returns target when it is a path on this site, fallback otherwise.
// It guards return-path parameters such as "?to=" against open redirects.
func LocalPath(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	parsed, err := url.Parse(target)
	if err != nil || parsed.Host != "" || parsed.Scheme != "" {
		return fallback
	}
	return target
}
