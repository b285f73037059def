package ratelimiter

import "time"

// Drivers accepted by NewStore.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Result of a rate limit check.
type Result struct {
	Limit     int       // bucket capacity
	Remaining int       // negative when the request is denied
	ResetAt   time.Time // next refill
}

// Allowed reports whether the request may proceed.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is how long a denied caller should wait. Zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}

// Config defines the token bucket and where it is stored.
type Config struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"5"`        // burst
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"1"`     // tokens per interval
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1m"`
	Driver         string        `env:"RATE_LIMIT_DRIVER" envDefault:"memory"`
	KeyPrefix      string        `env:"RATE_LIMIT_KEY_PREFIX" envDefault:"paymybuddy:ratelimit:"`
}
