package webstorage

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Drivers supported by Open.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config selects the backend of the shared tab storage.
type Config struct {
	Driver    string `env:"STORAGE_DRIVER" envDefault:"memory"`
	KeyPrefix string `env:"STORAGE_KEY_PREFIX" envDefault:"paymybuddy:storage:"`
}

// Open returns a handle for cfg.Driver. The memory driver needs area, the
// redis driver needs client.
func Open(cfg Config, area *MemoryArea, client redis.UniversalClient) (Storage, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		if area == nil {
			return nil, fmt.Errorf("%w: memory driver without area", ErrNoBackend)
		}
		return area.Open(), nil
	case DriverRedis:
		if client == nil {
			return nil, fmt.Errorf("%w: redis driver without client", ErrNoBackend)
		}
		return NewRedis(client, WithKeyPrefix(cfg.KeyPrefix)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
