// Package ratelimiter throttles keyed actions with a token bucket.
//
// A bucket holds up to Capacity tokens and regains RefillRate tokens every
// RefillInterval. Each attempt takes one; a negative remainder denies it.
// The web client uses it to slow down password guessing on the login form,
// keyed by client address.
//
// Buckets live in a Store. MemoryStore serves a single instance; RedisStore
// refills and consumes in one Lua script so replicas share their buckets:
//
//	store, err := ratelimiter.NewStore(cfg, redisClient)
//	if err != nil {
//		return err
//	}
//	limiter, err := ratelimiter.NewBucket(store, cfg)
//	if err != nil {
//		return err
//	}
//
//	res, err := limiter.Allow(ctx, "login:"+ip)
//	if err == nil && !res.Allowed() {
//		// wait res.RetryAfter()
//	}
package ratelimiter
