package account

// Config holds the account pages configuration.
type Config struct {
	LoginPath       string `env:"ACCOUNT_LOGIN_PATH" envDefault:"/login"`
	LandingPath     string `env:"ACCOUNT_LANDING_PATH" envDefault:"/summary"`
	DefaultCurrency string `env:"ACCOUNT_DEFAULT_CURRENCY" envDefault:"EUR"`
}

// DefaultConfig returns the configuration matching the page gate defaults.
func DefaultConfig() Config {
	return Config{
		LoginPath:       "/login",
		LandingPath:     "/summary",
		DefaultCurrency: "EUR",
	}
}
