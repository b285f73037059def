package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mountable is a group of pages served under a common prefix.
type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which services to mount in the account module.
// Each service is optional and will only be mounted if provided.
type RouterOptions struct {
	// Password serves login, registration and logout.
	Password Mountable
}

// Router creates the account router. Pages are mounted at the root so the
// login page lives at /login, where the page gate sends anonymous visitors.
//
//	r.Mount("/", account.Router(account.RouterOptions{
//		Password: account.NewPasswordService(cfg, api, cookies, views, errorHandler),
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	if opts.Password != nil {
		r.Mount("/", opts.Password.Handle())
	}
	return r
}
