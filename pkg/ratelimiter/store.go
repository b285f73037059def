package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps bucket states.
type Store interface {
	// ConsumeTokens takes tokens from the bucket of key, refilling it first.
	// A negative remaining count means the request is denied. Denied
	// requests still consume, so hammering a bucket keeps it empty.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)

	// Reset forgets the bucket of key.
	Reset(ctx context.Context, key string) error
}

// NewStore returns the store selected by cfg.Driver. The redis driver needs
// client.
func NewStore(cfg Config, client redis.UniversalClient) (Store, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverRedis:
		if client == nil {
			return nil, fmt.Errorf("%w: redis driver without client", ErrInvalidConfig)
		}
		return NewRedisStore(client, WithKeyPrefix(cfg.KeyPrefix)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
