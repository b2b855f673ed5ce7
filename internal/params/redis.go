package params

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTimeout bounds dialing, the connection handshake and each command.
const RedisTimeout = 50 * time.Millisecond

// #region redis
// RedisRegister keeps the status code in a Redis key so processes on other
// hosts (a dashboard, a logger) can read and press overrides.
type RedisRegister struct {
	client *redis.Client
	key    string
}

// RedisOptions parses url and applies RedisTimeout with retries disabled.
func RedisOptions(url string) (*redis.Options, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = RedisTimeout
	opts.ReadTimeout = RedisTimeout
	opts.WriteTimeout = RedisTimeout
	opts.PoolTimeout = RedisTimeout
	opts.MaxRetries = -1
	opts.ContextTimeoutEnabled = true
	return opts, nil
}

// NewRedisRegister connects to url and pings it.
func NewRedisRegister(ctx context.Context, url, key string) (*RedisRegister, error) {
	opts, err := RedisOptions(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisRegisterWithClient(client, key), nil
}

// NewRedisRegisterWithClient wraps an existing client.
func NewRedisRegisterWithClient(client *redis.Client, key string) *RedisRegister {
	return &RedisRegister{client: client, key: key}
}

// ReadStatus reads the key; a missing key reads as 0.
func (r *RedisRegister) ReadStatus(ctx context.Context) (int, error) {
	v, err := r.client.Get(ctx, r.key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return v, nil
}

// WriteStatus sets the key without expiry.
func (r *RedisRegister) WriteStatus(ctx context.Context, v int) error {
	if err := r.client.Set(ctx, r.key, v, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Close closes the client.
func (r *RedisRegister) Close() error {
	return r.client.Close()
}

// #endregion redis
