// Package account serves the pages that open and close a session: login,
// registration and logout.
//
// The pages run behind the SSR bootstrap middleware, which gives every request
// an authentication guard. Login and logout act on that guard and the
// bootstrap writes the resulting token to the session cookie. Login and
// registration are gated to anonymous visitors; an authenticated visitor is
// sent to the landing page.
//
//	svc := account.NewPasswordService(account.DefaultConfig(), api, gate, cookies, nil, errorHandler)
//	r.Mount("/", account.Router(account.RouterOptions{Password: svc}))
package account
