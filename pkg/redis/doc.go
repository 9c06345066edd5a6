// Package redis connects to Redis with github.com/redis/go-redis/v9 and
// exposes Storage, a small TTL key-value store used for short lived records
// such as one-time passcodes.
//
// Connect retries the initial ping according to Config. Storage offers the
// usual SetWithTTL, Get, Delete and Exists operations plus DeleteIfEquals, a
// compare-and-delete executed as a Lua script so that two concurrent callers
// can never both consume the same value.
//
//	client, err := redis.Connect(ctx, cfg)
//	store := redis.NewStorage(client, redis.WithKeyPrefix("bella:"))
//	ok, err := store.DeleteIfEquals(ctx, "otp:42", raw)
package redis
