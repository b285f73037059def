// Package handler turns typed handler functions into http.HandlerFunc values
// for the web front end.
//
// A handler receives a Context (the request context plus the request's auth
// guard) and a request value filled by binders, and returns a Response:
//
//	r.Post("/login", handler.Wrap(
//		func(ctx handler.Context, req LoginForm) handler.Response {
//			ok, err := ctx.Guard().Login(ctx, req.Email, req.Password)
//			switch {
//			case err != nil:
//				return handler.Error(err)
//			case !ok:
//				return handler.Templ(views.LoginError(), handler.WithTarget("#login-error"))
//			}
//			return handler.Redirect(handler.LocalPath(req.To, "/summary"))
//		},
//		handler.WithBinders[LoginForm](binder.Query(), binder.Form()),
//		handler.WithErrorHandler[LoginForm](errorHandler),
//	))
//
// Templ and Redirect responses detect DataStar requests and answer them with
// server-sent events instead of plain HTML.
//
// NewErrorHandler classifies API client errors: an access denied error with an
// invalid token clears the guard and redirects to the login page, upstream
// failures render 502 and unhandled service errors render 500.
package handler
