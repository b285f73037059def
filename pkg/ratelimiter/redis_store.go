package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces the bucket keys.
const DefaultKeyPrefix = "paymybuddy:ratelimit:"

// consumeLua refills and consumes a bucket atomically.
//
//	KEYS[1]  bucket hash {tokens, refill}
//	ARGV     capacity, refill rate, refill interval (ms), now (ms), tokens
//	returns  {remaining, last refill (ms)}
var consumeLua = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local cost = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'refill')
local tokens = tonumber(state[1])
local refill = tonumber(state[2])
if tokens == nil or refill == nil then
  tokens = capacity
  refill = now
end

local intervals = math.floor((now - refill) / interval)
if intervals > 0 then
  tokens = math.min(tokens + intervals * rate, capacity)
  refill = now
end

tokens = tokens - cost
redis.call('HSET', KEYS[1], 'tokens', tokens, 'refill', refill)
redis.call('PEXPIRE', KEYS[1], (math.ceil(capacity / rate) + 1) * interval)
return {tokens, refill}
`)

// RedisStore shares buckets between web instances.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the namespace of the bucket keys.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		if prefix != "" {
			rs.prefix = prefix
		}
	}
}

// WithRedisClock replaces time.Now. The script reads the time from its
// arguments, never from the server.
func WithRedisClock(now func() time.Time) RedisStoreOption {
	return func(rs *RedisStore) {
		if now != nil {
			rs.now = now
		}
	}
}

// NewRedisStore creates the store over client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	rs := &RedisStore{client: client, prefix: DefaultKeyPrefix, now: time.Now}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

func (rs *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	res, err := consumeLua.Run(ctx, rs.client, []string{rs.prefix + key},
		config.Capacity,
		config.RefillRate,
		config.RefillInterval.Milliseconds(),
		rs.now().UnixMilli(),
		tokens,
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("%w: unexpected script result %v", ErrStoreUnavailable, res)
	}

	resetAt := time.UnixMilli(res[1]).Add(config.RefillInterval)
	return int(res[0]), resetAt, nil
}

func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.prefix+key).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}
