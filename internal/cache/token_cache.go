// Package cache keeps users' current session tokens close to the session middleware.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// MaxTTL bounds how long a cached token may outlive a missed invalidation.
const MaxTTL = 5 * time.Minute

// Revoked is the cached value of a user without a session. It keeps a concurrent Fill
// from restoring a token read before the logout.
const Revoked = ""

// TokenCache stores the current session token per user.
// Writers that change the session use Set. Readers that load the token from the database
// use Fill, which never replaces an existing entry.
type TokenCache interface {
	Get(ctx context.Context, userID uuid.UUID) (token string, found bool, err error)
	Set(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error
	Fill(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) (stored bool, err error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// Connect parses url and checks that the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// RedisTokenCache implements TokenCache on redis.
type RedisTokenCache struct {
	client redis.Cmdable
}

func NewRedisTokenCache(client redis.Cmdable) *RedisTokenCache {
	return &RedisTokenCache{client: client}
}

func key(userID uuid.UUID) string {
	return "session:" + userID.String()
}

func (c *RedisTokenCache) Get(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	token, err := c.client.Get(ctx, key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

func (c *RedisTokenCache) Set(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	return c.client.Set(ctx, key(userID), token, clampTTL(ttl)).Err()
}

func (c *RedisTokenCache) Fill(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key(userID), token, clampTTL(ttl)).Result()
}

func (c *RedisTokenCache) Delete(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, key(userID)).Err()
}

func clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > MaxTTL {
		return MaxTTL
	}
	return ttl
}

// NopTokenCache never stores anything. It is used when no redis is configured.
type NopTokenCache struct{}

func (NopTokenCache) Get(context.Context, uuid.UUID) (string, bool, error) { return "", false, nil }

func (NopTokenCache) Set(context.Context, uuid.UUID, string, time.Duration) error { return nil }

func (NopTokenCache) Fill(context.Context, uuid.UUID, string, time.Duration) (bool, error) {
	return false, nil
}

func (NopTokenCache) Delete(context.Context, uuid.UUID) error { return nil }
