package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/armory/backend/internal/domain/shared"
	"github.com/armory/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// defaultStatusKeyPrefix namespaces cached session status payloads
const defaultStatusKeyPrefix = "status:session:"

// setIfNewerScript stores payload and rank only when the key is empty or
// holds a lower rank. Running it server-side makes the guard atomic, so two
// racing writers cannot leave an earlier lifecycle stage on top of a later
// one.
var setIfNewerScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'rank')
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'rank', ARGV[1], 'payload', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// RedisStatusCache implements StatusCache using Redis hashes. The TTL bounds
// staleness for polling clients; the rank guard bounds regression.
type RedisStatusCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStatusCache creates a new Redis-based status cache
func NewRedisStatusCache(cfg config.RedisConfig) (*RedisStatusCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStatusCache{
		client:    client,
		keyPrefix: defaultStatusKeyPrefix,
	}, nil
}

// NewRedisStatusCacheWithClient creates a cache with an existing Redis client
func NewRedisStatusCacheWithClient(client *redis.Client, keyPrefix string) *RedisStatusCache {
	if keyPrefix == "" {
		keyPrefix = defaultStatusKeyPrefix
	}
	return &RedisStatusCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached payload for a session, if any
func (c *RedisStatusCache) Get(ctx context.Context, sessionID string) ([]byte, bool, error) {
	payload, err := c.client.HGet(ctx, c.keyPrefix+sessionID, "payload").Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read status cache: %w", err)
	}
	return payload, true, nil
}

// SetIfNewer stores the payload unless a higher-ranked entry already exists
func (c *RedisStatusCache) SetIfNewer(ctx context.Context, sessionID string, rank int, payload []byte, ttl time.Duration) error {
	err := setIfNewerScript.Run(ctx, c.client,
		[]string{c.keyPrefix + sessionID},
		rank, payload, strconv.FormatInt(ttl.Milliseconds(), 10),
	).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to write status cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry for a session
func (c *RedisStatusCache) Invalidate(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, c.keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate status cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisStatusCache) Close() error {
	return c.client.Close()
}

// Ensure RedisStatusCache implements StatusCache
var _ shared.StatusCache = (*RedisStatusCache)(nil)
