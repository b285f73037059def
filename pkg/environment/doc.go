// Package environment propagates the deployment environment of the web client
// (development, staging, production) through context.Context and logs.
//
// The value is read once from APP_ENV with Parse, attached to every request by
// Middleware and added to log records by LoggerExtractor. Secure tells the
// cookie layer whether the session cookie must be HTTPS only.
//
//	env := environment.Parse(cfg.Env)
//	r.Use(environment.Middleware(env))
//	if environment.IsDevelopment(ctx) {
//		// verbose error pages
//	}
package environment
