// Package clientip resolves the address of the browser behind a page request.
//
// The web client usually runs behind a CDN or a load balancer, so GetIP
// prefers CF-Connecting-IP, DO-Connecting-IP, the first valid entry of
// X-Forwarded-For and X-Real-IP over RemoteAddr. Only deploy it behind proxies
// that overwrite these headers; a directly exposed server lets clients pick
// their own address.
//
// Middleware stores the address in the request context. It keys the login
// throttle and is attached to log records by LoggerExtractor:
//
//	r.Use(clientip.Middleware)
//	log := logger.New(logger.WithContextExtractors(clientip.LoggerExtractor()))
package clientip
