package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/paymybuddy/handler"
	"github.com/dmitrymomot/paymybuddy/pkg/binder"
	"github.com/dmitrymomot/paymybuddy/pkg/clientip"
	"github.com/dmitrymomot/paymybuddy/pkg/cookie"
	"github.com/dmitrymomot/paymybuddy/pkg/logger"
	"github.com/dmitrymomot/paymybuddy/pkg/pageguard"
	"github.com/dmitrymomot/paymybuddy/pkg/paymybuddy"
	"github.com/dmitrymomot/paymybuddy/pkg/ratelimiter"
	"github.com/dmitrymomot/paymybuddy/pkg/validator"
)

const flashNotice = "notice"

// PasswordService serves the email and password pages: login, registration
// and logout. Sessions are read from and written to the request's guard; the
// SSR bootstrap persists the resulting token.
type PasswordService struct {
	cfg          Config
	api          *paymybuddy.Service
	gate         *pageguard.Gate
	cookies      *cookie.Manager
	views        *Views
	errorHandler handler.ErrorHandler
	limiter      LoginLimiter
	logger       *slog.Logger
}

// LoginLimiter throttles login attempts per key. *ratelimiter.Bucket
// implements it.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (*ratelimiter.Result, error)
	Reset(ctx context.Context, key string) error
}

// PasswordOption configures a PasswordService.
type PasswordOption func(*PasswordService)

// WithLoginLimiter throttles login attempts by client address.
func WithLoginLimiter(l LoginLimiter) PasswordOption {
	return func(s *PasswordService) {
		s.limiter = l
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) PasswordOption {
	return func(s *PasswordService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewPasswordService creates the service. A nil views uses DefaultViews.
func NewPasswordService(
	cfg Config,
	api *paymybuddy.Service,
	gate *pageguard.Gate,
	cookies *cookie.Manager,
	views *Views,
	errorHandler handler.ErrorHandler,
	opts ...PasswordOption,
) *PasswordService {
	if views == nil {
		views = DefaultViews()
	}
	if gate == nil {
		gate = pageguard.New(pageguard.WithLoginPath(cfg.LoginPath), pageguard.WithLandingPath(cfg.LandingPath))
	}
	s := &PasswordService{
		cfg:          cfg,
		api:          api,
		gate:         gate,
		cookies:      cookies,
		views:        views,
		errorHandler: errorHandler,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the pages as a router of their own.
func (s *PasswordService) Handle() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

// Routes registers the pages on r.
func (s *PasswordService) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(s.gate.Middleware(pageguard.IsAnonymous))

		r.Get("/login", handler.Wrap(s.showLogin,
			handler.WithBinders[LoginRequest](binder.Query()),
			handler.WithErrorHandler[LoginRequest](s.errorHandler),
		))
		r.Post("/login", handler.Wrap(s.login,
			handler.WithBinders[LoginRequest](binder.Form()),
			handler.WithErrorHandler[LoginRequest](s.errorHandler),
		))
		r.Get("/register", handler.Wrap(s.showRegister,
			handler.WithErrorHandler[RegisterRequest](s.errorHandler),
		))
		r.Post("/register", handler.Wrap(s.register,
			handler.WithBinders[RegisterRequest](binder.Form()),
			handler.WithErrorHandler[RegisterRequest](s.errorHandler),
		))
	})

	r.Post("/logout", handler.Wrap(s.logout,
		handler.WithErrorHandler[struct{}](s.errorHandler),
	))
}

// LoginRequest handles both GET (query params) and POST (form data)
type LoginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	ReturnTo string `form:"to" query:"to"`
}

func (s *PasswordService) showLogin(ctx handler.Context, req LoginRequest) handler.Response {
	var notice string
	_ = s.cookies.GetFlash(ctx.ResponseWriter(), ctx.Request(), flashNotice, &notice)

	return handler.Templ(s.views.LoginPage(LoginPageParams{
		Form: LoginFormParams{ReturnTo: req.ReturnTo, Notice: notice},
	}))
}

func (s *PasswordService) login(ctx handler.Context, req LoginRequest) handler.Response {
	guard := ctx.Guard()
	if guard == nil {
		return handler.Error(ErrNoGuard)
	}

	key := throttleKey(ctx.Request())
	if s.limiter != nil {
		res, err := s.limiter.Allow(ctx, key)
		if err != nil {
			return handler.Error(err)
		}
		if !res.Allowed() {
			wait := int(math.Ceil(res.RetryAfter().Seconds()))
			ctx.ResponseWriter().Header().Set("Retry-After", strconv.Itoa(max(wait, 1)))
			s.logger.WarnContext(ctx, "login throttled", logger.Event("login_throttled"))
			return s.loginForm(req, fmt.Sprintf("Too many attempts, try again in %d seconds", max(wait, 1)))
		}
	}

	ok, err := guard.Login(ctx, req.Email, req.Password)
	if err != nil {
		return handler.Error(err)
	}
	if !ok {
		return s.loginForm(req, "Invalid email or password")
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "failed to reset login throttle", logger.Error(err))
		}
	}
	return handler.Redirect(handler.LocalPath(req.ReturnTo, s.cfg.LandingPath))
}

func (s *PasswordService) loginForm(req LoginRequest, message string) handler.Response {
	form := LoginFormParams{
		Email:    req.Email,
		ReturnTo: req.ReturnTo,
		Error:    message,
	}
	return handler.TemplPartial(
		s.views.LoginForm(form),
		s.views.LoginPage(LoginPageParams{Form: form}),
		handler.WithTarget("#login-form"),
	)
}

func throttleKey(r *http.Request) string {
	ip := clientip.FromContext(r.Context())
	if ip == "" {
		ip = clientip.GetIP(r)
	}
	return "login:" + ip
}

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
	Currency string `form:"currency"`
}

func (s *PasswordService) showRegister(ctx handler.Context, _ RegisterRequest) handler.Response {
	return handler.Templ(s.views.RegisterPage(RegisterPageParams{
		Form: RegisterFormParams{
			DefaultCurrency: s.cfg.DefaultCurrency,
			Currencies:      paymybuddy.Currencies,
		},
	}))
}

func (s *PasswordService) register(ctx handler.Context, req RegisterRequest) handler.Response {
	form := RegisterFormParams{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		DefaultCurrency: req.Currency,
		Currencies:      paymybuddy.Currencies,
	}

	verr := validateRegistration(form, req.Password)
	if verr.IsEmpty() {
		err := s.api.Register(ctx, paymybuddy.RegisterRequest{
			Name:            form.Name,
			Email:           form.Email,
			Password:        req.Password,
			DefaultCurrency: req.Currency,
		})

		var fieldErr *paymybuddy.FieldError
		switch {
		case err == nil:
			_ = s.cookies.SetFlash(ctx.ResponseWriter(), flashNotice, "Your account is ready, you can now log in")
			return handler.Redirect(s.cfg.LoginPath)
		case errors.As(err, &fieldErr):
			verr.Add(fieldErr.Field, fieldMessage(fieldErr))
		case errors.Is(err, paymybuddy.ErrUnsupportedCurrency):
			verr.Add("currency", "Choose one of the listed currencies")
		default:
			return handler.Error(err)
		}
	}

	form.Errors = make(map[string]string, len(verr))
	for field := range verr {
		form.Errors[field] = verr.Get(field)
	}
	return handler.TemplPartial(
		s.views.RegisterForm(form),
		s.views.RegisterPage(RegisterPageParams{Form: form}),
		handler.WithTarget("#register-form"),
	)
}

const maxNameLength = 100

func validateRegistration(form RegisterFormParams, password string) handler.ValidationError {
	verr := handler.NewValidationError()
	err := validator.Apply(
		validator.Required("name", form.Name).WithMessage("Enter your name"),
		validator.MaxLen("name", form.Name, maxNameLength).WithMessage(fmt.Sprintf("Use at most %d characters", maxNameLength)),
		validator.ValidEmail("email", form.Email).WithMessage("Enter a valid email address"),
		validator.Required("password", password).WithMessage("Choose a password"),
		validator.InListString("currency", strings.ToUpper(strings.TrimSpace(form.DefaultCurrency)), paymybuddy.Currencies).
			WithMessage("Choose one of the listed currencies"),
	)
	for _, e := range validator.ExtractValidationErrors(err) {
		verr.Add(e.Field, e.Message)
	}
	return verr
}

func fieldMessage(err *paymybuddy.FieldError) string {
	switch {
	case err.AlreadyExists:
		return "This email is already registered"
	case err.Message != "":
		return err.Message
	}
	return "This value is not accepted"
}

func (s *PasswordService) logout(ctx handler.Context, _ struct{}) handler.Response {
	if guard := ctx.Guard(); guard != nil {
		guard.Logout(ctx)
	}
	return handler.Redirect(s.cfg.LoginPath)
}
