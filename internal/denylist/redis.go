package denylist

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/course-enrollment/internal/cache"
)

const redisPrefix = "denylist:"

// Redis denylist на Redis: ключ живёт до истечения токена.
type Redis struct {
	cache *cache.Cache
	now   func() time.Time
}

// NewRedis создаёт denylist поверх подключения cache.
func NewRedis(c *cache.Cache) *Redis {
	return &Redis{cache: c, now: time.Now}
}

// Revoke сохраняет токен с TTL до expiresAt.
func (r *Redis) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	const op = "denylist.Redis.Revoke"
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.cache.Set(ctx, redisPrefix+digest(token), expiresAt.Unix(), ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsRevoked проверяет наличие ключа токена.
func (r *Redis) IsRevoked(ctx context.Context, token string) (bool, error) {
	const op = "denylist.Redis.IsRevoked"
	ok, err := r.cache.Exists(ctx, redisPrefix+digest(token))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}
