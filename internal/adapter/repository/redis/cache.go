package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	versionField = "version"
	valueField   = "value"

	// maxWatchAttempts bounds optimistic retries when another writer touches
	// the key between WATCH and EXEC.
	maxWatchAttempts = 5
)

// Cache implements usecase.Cache using Redis. Each entry is a hash holding
// the value and the version it was written at.
type Cache struct {
	client *redis.Client
	prefix string
}

// NewCache creates a new Cache.
func NewCache(client *redis.Client) *Cache {
	return &Cache{
		client: client,
		prefix: "pgbudget:cache:",
	}
}

// Get retrieves a value by key. A missing key returns nil, nil.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.HGet(ctx, c.prefix+key, valueField).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// SetIfNewer stores value with TTL unless the cached entry already carries
// version or a later one. The check and the write run in one WATCH/MULTI
// transaction.
func (c *Cache) SetIfNewer(ctx context.Context, key string, version int64, value []byte, ttl time.Duration) (bool, error) {
	full := c.prefix + key

	for attempt := 0; attempt < maxWatchAttempts; attempt++ {
		written := false
		err := c.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.HGet(ctx, full, versionField).Int64()
			switch {
			case errors.Is(err, redis.Nil):
			case err != nil:
				return err
			case current >= version:
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, full, versionField, version, valueField, value)
				if ttl > 0 {
					pipe.Expire(ctx, full, ttl)
				}
				return nil
			})
			if err != nil {
				return err
			}
			written = true
			return nil
		}, full)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return written, err
	}

	return false, redis.TxFailedErr
}

// Delete removes keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	return c.client.Del(ctx, full...).Err()
}
