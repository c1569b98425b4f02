package authflag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCmdable is the subset of go-redis used by RedisStorage.
type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisStorage stores items in Redis under prefix+key. It lets several
// widget processes serving the same shopper share one flag.
type RedisStorage struct {
	client  redisCmdable
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// RedisOption configures a RedisStorage.
type RedisOption func(*RedisStorage)

// WithTTL expires items after d. Zero keeps them forever.
func WithTTL(d time.Duration) RedisOption {
	return func(r *RedisStorage) { r.ttl = d }
}

// WithPrefix scopes keys, typically to a shopper or device.
func WithPrefix(prefix string) RedisOption {
	return func(r *RedisStorage) { r.prefix = prefix }
}

// NewRedisStorage wraps an existing client.
func NewRedisStorage(client redisCmdable, opts ...RedisOption) *RedisStorage {
	r := &RedisStorage{client: client, timeout: 2 * time.Second}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DialRedis parses a redis:// URL and returns a connected client.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (r *RedisStorage) GetItem(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

func (r *RedisStorage) SetItem(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
