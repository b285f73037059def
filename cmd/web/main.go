// Command web serves the server side rendered PayMyBuddy client.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/paymybuddy/handler"
	"github.com/dmitrymomot/paymybuddy/modules/account"
	"github.com/dmitrymomot/paymybuddy/modules/layout"
	"github.com/dmitrymomot/paymybuddy/modules/wallet"
	"github.com/dmitrymomot/paymybuddy/pkg/apiclient"
	"github.com/dmitrymomot/paymybuddy/pkg/clientip"
	"github.com/dmitrymomot/paymybuddy/pkg/config"
	"github.com/dmitrymomot/paymybuddy/pkg/cookie"
	"github.com/dmitrymomot/paymybuddy/pkg/environment"
	"github.com/dmitrymomot/paymybuddy/pkg/httpserver"
	"github.com/dmitrymomot/paymybuddy/pkg/logger"
	"github.com/dmitrymomot/paymybuddy/pkg/pageguard"
	"github.com/dmitrymomot/paymybuddy/pkg/paymybuddy"
	"github.com/dmitrymomot/paymybuddy/pkg/ratelimiter"
	"github.com/dmitrymomot/paymybuddy/pkg/redis"
	"github.com/dmitrymomot/paymybuddy/pkg/requestid"
	"github.com/dmitrymomot/paymybuddy/pkg/ssr"
)

type appConfig struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	StaticDir string `env:"STATIC_DIR" envDefault:"./static"`

	API       apiclient.Config
	HTTP      httpserver.Config
	Cookie    cookie.Config
	SSR       ssr.Config
	Log       logger.Config
	Account   account.Config
	Wallet    wallet.Config
	RateLimit ratelimiter.Config
	// Redis is only dialed when the rate limit driver is redis.
	Redis redis.Config
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("web client stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	env := environment.Parse(cfg.Env)
	log := logger.New(
		logger.WithEnvironment(env, "paymybuddy-web"),
		logger.WithConfig(cfg.Log),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			environment.LoggerExtractor(),
			clientip.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	if env.Secure() {
		cfg.Cookie.Secure = true
	}
	cookies, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		return err
	}

	api := apiclient.NewServerFromConfig(cfg.API,
		apiclient.WithHTTPClient(&http.Client{Transport: requestid.Transport(nil)}),
		apiclient.WithLogger(log),
	)
	payments := paymybuddy.New(api)

	boot := ssr.New(api, cookies, ssr.WithConfig(cfg.SSR), ssr.WithLogger(log))
	gate := pageguard.New(
		pageguard.WithLoginPath(cfg.Account.LoginPath),
		pageguard.WithLandingPath(cfg.Account.LandingPath),
	)
	errorHandler := handler.NewErrorHandler(log, handler.ErrorHandlerConfig{
		ErrorPage: func(p handler.ErrorPageParams) templ.Component {
			return layout.ErrorPage(p.StatusCode, p.Error, p.RequestID)
		},
		ErrorToast: func(p handler.ErrorToastParams) templ.Component {
			return layout.Toast(p.Message, p.Type)
		},
		LoginURL: cfg.Account.LoginPath,
	})

	checks := []httpserver.Check{{
		Name: "api",
		Fn:   httpserver.Reachable(nil, cfg.API.ServerURL()),
	}}

	var redisClient *goredis.Client
	if cfg.RateLimit.Driver == ratelimiter.DriverRedis {
		redisClient, err = redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(redisClient)})
	}
	throttleStore, err := ratelimiter.NewStore(cfg.RateLimit, redisClient)
	if err != nil {
		return err
	}
	if mem, ok := throttleStore.(*ratelimiter.MemoryStore); ok {
		defer mem.Close()
	}
	throttle, err := ratelimiter.NewBucket(throttleStore, cfg.RateLimit)
	if err != nil {
		return err
	}

	passwords := account.NewPasswordService(cfg.Account, payments, gate, cookies, nil, errorHandler,
		account.WithLoginLimiter(throttle),
		account.WithLogger(log),
	)
	pages := wallet.New(cfg.Wallet, payments, gate, cookies, nil, errorHandler)

	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.Middleware, environment.Middleware(env))

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, checks...))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))

	r.Group(func(r chi.Router) {
		r.Use(boot.Middleware)
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, cfg.Account.LandingPath, http.StatusSeeOther)
		})
		passwords.Routes(r)
		pages.Routes(r)
	})

	return httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log)).Run(ctx, r)
}
