package wallet

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/paymybuddy/handler"
	"github.com/dmitrymomot/paymybuddy/pkg/binder"
	"github.com/dmitrymomot/paymybuddy/pkg/cookie"
	"github.com/dmitrymomot/paymybuddy/pkg/pageguard"
	"github.com/dmitrymomot/paymybuddy/pkg/paymybuddy"
)

const flashNotice = "notice"

// Config holds the wallet pages configuration.
type Config struct {
	PageSize int `env:"WALLET_PAGE_SIZE" envDefault:"10"`

	// Account receiving bank transfers that top up a wallet.
	BankIBAN      string `env:"WALLET_BANK_IBAN" envDefault:"XXXXXXXXXXXXXXXXXXXX"`
	BankRecipient string `env:"WALLET_BANK_RECIPIENT" envDefault:"PayMyBuddy"`
	BankBIC       string `env:"WALLET_BANK_BIC" envDefault:"XXXXXXXX"`
}

// Service serves the pages of an authenticated user: summary, contacts,
// transfers and the add money instructions. Every call to the API runs with the session of the request's
// guard.
type Service struct {
	cfg          Config
	api          *paymybuddy.Service
	gate         *pageguard.Gate
	cookies      *cookie.Manager
	views        *Views
	errorHandler handler.ErrorHandler
}

// New creates the service. A nil gate uses the default login and landing
// pages; nil views use DefaultViews.
func New(cfg Config, api *paymybuddy.Service, gate *pageguard.Gate, cookies *cookie.Manager, views *Views, errorHandler handler.ErrorHandler) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if gate == nil {
		gate = pageguard.New()
	}
	if views == nil {
		views = DefaultViews()
	}
	return &Service{
		cfg:          cfg,
		api:          api,
		gate:         gate,
		cookies:      cookies,
		views:        views,
		errorHandler: errorHandler,
	}
}

// Handle returns the pages as a router of their own.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

// Routes registers the pages on r, behind the authenticated page gate.
func (s *Service) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		s.routes(r)
	})
}

func (s *Service) routes(r chi.Router) {
	r.Use(s.gate.Middleware(pageguard.IsAuthenticated))

	r.Get("/summary", handler.Wrap(s.summary,
		handler.WithBinders[SummaryRequest](binder.Query()),
		handler.WithErrorHandler[SummaryRequest](s.errorHandler),
	))

	r.Get("/contacts", handler.Wrap(s.contacts,
		handler.WithBinders[ContactsRequest](binder.Query()),
		handler.WithErrorHandler[ContactsRequest](s.errorHandler),
	))
	r.Post("/contacts", handler.Wrap(s.addContact,
		handler.WithBinders[AddContactRequest](binder.Form()),
		handler.WithErrorHandler[AddContactRequest](s.errorHandler),
	))
	r.Get("/contacts/autocomplete", handler.Wrap(s.autocomplete,
		handler.WithBinders[AutocompleteRequest](binder.Query()),
		handler.WithErrorHandler[AutocompleteRequest](s.errorHandler),
	))
	r.Post("/contacts/{id}/remove", handler.Wrap(s.removeContact,
		handler.WithBinders[ContactPath](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[ContactPath](s.errorHandler),
	))

	r.Get("/transfer", handler.Wrap(s.transfer,
		handler.WithBinders[TransferRequest](binder.Query()),
		handler.WithErrorHandler[TransferRequest](s.errorHandler),
	))
	r.Post("/transfer", handler.Wrap(s.send,
		handler.WithBinders[SendRequest](binder.Form()),
		handler.WithErrorHandler[SendRequest](s.errorHandler),
	))
	r.Post("/withdraw", handler.Wrap(s.withdraw,
		handler.WithBinders[WithdrawRequest](binder.Form()),
		handler.WithErrorHandler[WithdrawRequest](s.errorHandler),
	))
	r.Get("/add-money", handler.Wrap(s.addMoney,
		handler.WithErrorHandler[struct{}](s.errorHandler),
	))
}

func (s *Service) notice(ctx handler.Context) string {
	var notice string
	_ = s.cookies.GetFlash(ctx.ResponseWriter(), ctx.Request(), flashNotice, &notice)
	return notice
}

func (s *Service) flash(ctx handler.Context, notice string) {
	_ = s.cookies.SetFlash(ctx.ResponseWriter(), flashNotice, notice)
}

// SummaryRequest selects a slice of the activity feed.
type SummaryRequest struct {
	Cursor string `query:"cursor"`
}

func (s *Service) summary(ctx handler.Context, req SummaryRequest) handler.Response {
	balances, err := s.api.Balances(ctx)
	if err != nil {
		return handler.Error(err)
	}
	feed, err := s.api.Transactions(ctx, paymybuddy.CursorQuery{
		Cursor:   req.Cursor,
		PageSize: s.cfg.PageSize,
		Sort:     "-date",
	})
	if err != nil {
		return handler.Error(err)
	}

	activity := ActivityParams{Cursor: feed}
	if u := ctx.Guard().User(); u != nil {
		activity.UserID = u.ID
	}
	return handler.TemplPartial(
		s.views.Activity(activity),
		s.views.SummaryPage(SummaryPageParams{
			Notice:   s.notice(ctx),
			Balances: balances,
			Activity: activity,
		}),
		handler.WithTarget("#activity"),
	)
}
