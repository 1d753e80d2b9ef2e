package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jvacosta/dailyfish-backend/pkg/config"
)

// All keys live under a single namespace so a shared Redis instance can be
// inspected (or flushed) per concern: df:idempotency:*, df:rate_limit:*, df:counter:*.
const (
	keyNamespace = "df"

	prefixIdempotency = "idempotency"
	prefixRateLimit   = "rate_limit"
	prefixCounter     = "counter"
)

var errNotReady = errors.New("redis client not initialized")

// commands is the slice of go-redis used by this package. Tests swap in an
// in-memory implementation.
type commands interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Incr(context.Context, string) *redis.IntCmd
	Expire(context.Context, string, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client provides namespaced key/value, counter and rate-limit helpers on top
// of a shared Redis connection.
type Client struct {
	cmds commands
	conn *redis.Client
}

// Pinger is the health-check surface consumed by readiness handlers.
type Pinger interface {
	Ping(context.Context) error
}

// IdempotencyStore is what the idempotency middleware needs from Redis.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	Del(context.Context, ...string) error
}

// New dials Redis from config and fails fast if the server is unreachable.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	opts, err := dialOptions(cfg)
	if err != nil {
		return nil, err
	}
	conn := redis.NewClient(opts)
	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{cmds: conn, conn: conn}, nil
}

// dialOptions prefers a full URL when present; discrete address fields act as
// the fallback. Pool settings from config only apply when the URL left them unset.
func dialOptions(cfg config.RedisConfig) (*redis.Options, error) {
	switch {
	case cfg.URL != "":
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		if opts.DB == 0 {
			opts.DB = cfg.DB
		}
		if opts.PoolSize == 0 {
			opts.PoolSize = cfg.PoolSize
		}
		if opts.MinIdleConns == 0 {
			opts.MinIdleConns = cfg.MinIdleConns
		}
		return opts, nil
	case cfg.Address != "":
		return &redis.Options{
			Addr:         cfg.Address,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
		}, nil
	default:
		return nil, errors.New("redis url or address is required")
	}
}

// Set writes value under key, with ttl <= 0 meaning no expiry.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.cmds == nil {
		return errNotReady
	}
	return c.cmds.Set(ctx, key, value, ttl).Err()
}

// Get reads the string stored at key. Missing keys surface redis.Nil.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c.cmds == nil {
		return "", errNotReady
	}
	return c.cmds.Get(ctx, key).Result()
}

// SetNX writes only when key is absent and reports whether this caller won.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if c.cmds == nil {
		return false, errNotReady
	}
	return c.cmds.SetNX(ctx, key, value, ttl).Result()
}

// Incr bumps the counter at key and returns the new value.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	if c.cmds == nil {
		return 0, errNotReady
	}
	return c.cmds.Incr(ctx, key).Result()
}

// IncrWithTTL bumps the counter and attaches the ttl when this increment
// created the key. Counts from later increments keep the original expiry.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := c.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	if count == 1 && ttl > 0 {
		if err := c.cmds.Expire(ctx, key, ttl).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// FixedWindowAllow counts a hit against scope and reports whether the caller
// is still inside limit for the current window.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	count, err := c.IncrWithTTL(ctx, c.RateLimitKey(scope), window)
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

// IdempotencyKey builds the storage key for a replay record.
func (c *Client) IdempotencyKey(scope, id string) string {
	return joinKey(prefixIdempotency, scope, id)
}

// RateLimitKey builds the counter key for a rate-limit scope.
func (c *Client) RateLimitKey(scope string) string {
	return joinKey(prefixRateLimit, scope)
}

// CounterKey builds the key for a named counter.
func (c *Client) CounterKey(name string) string {
	return joinKey(prefixCounter, name)
}

// Del removes the given keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if c.cmds == nil {
		return errNotReady
	}
	return c.cmds.Del(ctx, keys...).Err()
}

// Ping checks the connection for readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	if c.cmds == nil {
		return errNotReady
	}
	return c.cmds.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func joinKey(parts ...string) string {
	segs := make([]string, 0, len(parts)+1)
	segs = append(segs, keyNamespace)
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			segs = append(segs, trimmed)
		}
	}
	return strings.Join(segs, ":")
}
