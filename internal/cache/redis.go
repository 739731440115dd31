package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/prospect/internal/store"
)

const rosterKeyPrefix = "prospect:roster:"

// RedisCache keeps the last fetched roster per league so restarts and
// refreshes inside the TTL window skip the upstream feed.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisCacheFromClient(client, ttl), nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// RosterKey is the cache key for a league roster
func RosterKey(l store.League) string {
	return rosterKeyPrefix + l.Key()
}

// GetRoster returns the cached roster for league. ok is false on a miss.
func (rc *RedisCache) GetRoster(ctx context.Context, l store.League) ([]store.PlayerRecord, bool, error) {
	raw, err := rc.client.Get(ctx, RosterKey(l)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s roster: %w", l, err)
	}

	var records []store.PlayerRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false, fmt.Errorf("decode cached %s roster: %w", l, err)
	}
	return records, true, nil
}

// SetRoster stores the roster for league with the configured TTL
func (rc *RedisCache) SetRoster(ctx context.Context, l store.League, records []store.PlayerRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s roster: %w", l, err)
	}
	if err := rc.client.Set(ctx, RosterKey(l), data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("set %s roster: %w", l, err)
	}
	return nil
}

// DeleteRoster drops the cached roster for league
func (rc *RedisCache) DeleteRoster(ctx context.Context, l store.League) error {
	return rc.client.Del(ctx, RosterKey(l)).Err()
}
