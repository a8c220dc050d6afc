package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultKeyPrefix namespaces translation memory keys in a shared Redis.
const DefaultKeyPrefix = "xmlpo:"

// scanCount is the COUNT hint passed to SCAN when enumerating entries.
const scanCount = 200

// RedisCache is a translation memory shared through Redis.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string // e.g. "redis://localhost:6379/0"
	TTL       int    // seconds, 0 = no expiration
	KeyPrefix string // defaults to DefaultKeyPrefix
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	c := NewRedisCacheFromClient(redis.NewClient(opts), cfg.TTL, cfg.KeyPrefix)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.client.Close()
		return nil, err
	}
	return c, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, ttlSeconds int, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return &RedisCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// Get retrieves a translation. Connection errors are logged and reported
// as a miss so a flaky memory never blocks a merge.
func (c *RedisCache) Get(key string) (string, bool) {
	val, err := c.client.Get(context.Background(), c.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Translation memory lookup failed")
		return "", false
	}
	return val, true
}

// Set stores a translation with the configured TTL.
func (c *RedisCache) Set(key string, value string) error {
	return c.client.Set(context.Background(), c.keyPrefix+key, value, c.ttl).Err()
}

// Entries enumerates every key under the prefix with SCAN and fetches the
// values in one MGET per page. Keys that vanish between the two calls are
// skipped.
func (c *RedisCache) Entries() (map[string]string, error) {
	ctx := context.Background()
	out := make(map[string]string)

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", scanCount).Result()
		if err != nil {
			return nil, err
		}
		if len(keys) > 0 {
			vals, err := c.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, err
			}
			for i, v := range vals {
				s, ok := v.(string)
				if !ok {
					continue
				}
				out[strings.TrimPrefix(keys[i], c.keyPrefix)] = s
			}
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	return out, nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping() error {
	return c.client.Ping(context.Background()).Err()
}

var _ Store = (*RedisCache)(nil)
