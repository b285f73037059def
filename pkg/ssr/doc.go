// Package ssr resolves the session of server rendered requests.
//
// Every request gets its own auth guard. The bearer token is read from an
// encrypted cookie and remembered against the API before the page handler
// runs; a stale token deletes the cookie, any other failure is logged and the
// page renders anonymous. The guard is stored in the request context for
// handlers and as the API client's token source.
//
// Token changes made during the request (login, logout, expiry) are written
// back to the cookie. Pages embed the resolved session with Hydration so a
// client can start from the same state:
//
//	boot := ssr.New(api, cookies, ssr.WithConfig(cfg), ssr.WithLogger(log))
//	r.Use(boot.Middleware)
package ssr
