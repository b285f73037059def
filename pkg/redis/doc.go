// Package redis connects to the Redis server backing the shared tab storage.
//
// Connect retries the initial ping according to Config, whose fields are
// populated from the environment (REDIS_URL, REDIS_RETRY_ATTEMPTS, ...):
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Healthcheck adapts the client to a readiness probe. Failures are joined with
// the package sentinels and can be matched with errors.Is.
package redis
