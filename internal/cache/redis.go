package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/checkin/config"
	"github.com/redis/go-redis/v9"
)

// RedisCache is a derived, invalidatable view over the relational store. It is
// never authoritative.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

// NewWithClient wraps an existing client, used by tests.
func NewWithClient(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// GetOrCompute returns the cached value for key, or invokes compute on a miss
// and stores the result with the given TTL before returning it. A read or
// store failure falls through to compute so the cache never blocks a read.
func GetOrCompute[T any](ctx context.Context, c *RedisCache, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	var value T

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		if err := json.Unmarshal(data, &value); err == nil {
			return value, nil
		}
	}

	value, err = compute(ctx)
	if err != nil {
		return value, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	_ = c.client.Set(ctx, key, payload, ttl).Err()
	return value, nil
}

// Invalidate removes keys after the underlying write has committed. Callers
// must never invalidate before the write: a stale window is acceptable, a
// phantom future value is not.
func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func ReservationKey(flightLegID, seatNumber string) string {
	return fmt.Sprintf("reservation:%s:%s", flightLegID, seatNumber)
}

func ReservationsByLegKey(flightLegID string) string {
	return fmt.Sprintf("reservations:leg:%s", flightLegID)
}
