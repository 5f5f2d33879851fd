package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle tracks failed login attempts per client key.
type Throttle interface {
	TooManyFailures(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// LoginThrottle counts failures in redis with a sliding-off window: the
// counter expires as a whole once the window elapses after the first failure.
type LoginThrottle struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

func NewLoginThrottle(rdb *redis.Client, max int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{rdb: rdb, max: max, window: window}
}

func (t *LoginThrottle) key(key string) string {
	return "login:fail:" + key
}

func (t *LoginThrottle) TooManyFailures(ctx context.Context, key string) (bool, error) {
	count, err := t.rdb.Get(ctx, t.key(key)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle read: %w", err)
	}
	return count >= t.max, nil
}

func (t *LoginThrottle) RecordFailure(ctx context.Context, key string) error {
	count, err := t.rdb.Incr(ctx, t.key(key)).Result()
	if err != nil {
		return fmt.Errorf("throttle incr: %w", err)
	}
	if count == 1 {
		if err := t.rdb.Expire(ctx, t.key(key), t.window).Err(); err != nil {
			return fmt.Errorf("throttle expire: %w", err)
		}
	}
	return nil
}

func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	if err := t.rdb.Del(ctx, t.key(key)).Err(); err != nil {
		return fmt.Errorf("throttle reset: %w", err)
	}
	return nil
}
