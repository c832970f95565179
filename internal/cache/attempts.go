package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginAttempts counts failed logins per e-mail in a fixed window.
type LoginAttempts struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewLoginAttempts(client *redis.Client, limit int, window time.Duration) *LoginAttempts {
	return &LoginAttempts{client: client, limit: limit, window: window}
}

func attemptsKey(email string) string {
	return "login:fail:" + strings.ToLower(email)
}

func (a *LoginAttempts) Locked(ctx context.Context, email string) (bool, error) {
	if a.limit <= 0 {
		return false, nil
	}
	n, err := a.client.Get(ctx, attemptsKey(email)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= a.limit, nil
}

// Fail records a failed attempt. The window starts at the first failure.
func (a *LoginAttempts) Fail(ctx context.Context, email string) error {
	key := attemptsKey(email)
	pipe := a.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, a.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return incr.Err()
}

func (a *LoginAttempts) Reset(ctx context.Context, email string) error {
	return a.client.Del(ctx, attemptsKey(email)).Err()
}
