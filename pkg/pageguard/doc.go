// Package pageguard gates pages on the auth guard state.
//
// A page declares whether it needs an authenticated or an anonymous visitor.
// Unauthenticated visitors of protected pages go to the login page with the
// current path in the "to" parameter; authenticated visitors of anonymous
// pages (login, register) go to the landing page. While the guard is still
// authenticating, a loading placeholder is rendered instead of the page so
// protected content never flashes.
//
//	gate := pageguard.New()
//	r.With(gate.Middleware(pageguard.IsAuthenticated)).Get("/summary", summary)
//	r.With(gate.Middleware(pageguard.IsAnonymous)).Get("/login", loginPage)
//
// Tabs apply the same decision with Gate.Decide.
package pageguard
