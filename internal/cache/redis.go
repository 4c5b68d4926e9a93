package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/redis/go-redis/v9"
)

const scanBatch = 200

// RedisCache backs the query cache, the session store and the checkout
// pending flags.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DeletePrefix removes every key starting with prefix and returns how many
// were removed.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	iter := c.client.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	removed := 0
	batch := make([]string, 0, scanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		removed += int(n)
		batch = batch[:0]
		return err
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, flush()
}

// releaseLock deletes a pending flag only while it still holds the caller's
// token, so an expired flag taken over by another attempt survives.
var releaseLock = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// AcquireCheckoutLock marks a checkout form as pending under token. It
// reports false when a submission for the form is already in flight.
func (c *RedisCache) AcquireCheckoutLock(ctx context.Context, form, token string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, checkoutLockKey(form), token, ttl).Result()
}

// ReleaseCheckoutLock clears the pending flag if token still owns it.
func (c *RedisCache) ReleaseCheckoutLock(ctx context.Context, form, token string) error {
	return releaseLock.Run(ctx, c.client, []string{checkoutLockKey(form)}, token).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func checkoutLockKey(form string) string {
	return "lock:checkout:" + form
}

func SessionKey(id string) string {
	return "session:" + id
}
