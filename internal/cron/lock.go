package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
)

const defaultLockTTL = 25 * time.Hour

// Locker guards a job so only one worker instance runs it at a time.
type Locker interface {
	TryLock(ctx context.Context, job string) (release func(context.Context) error, obtained bool, err error)
}

type lockObtainer interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

type lockKeyer interface {
	CronLockKey(job string) string
}

// RedisLocker implements Locker with bsm/redislock. Locks expire after ttl
// so a crashed worker cannot block a job forever.
type RedisLocker struct {
	client lockObtainer
	keys   lockKeyer
	ttl    time.Duration
}

func NewRedisLocker(client lockObtainer, keys lockKeyer, ttl time.Duration) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis lock client required")
	}
	if keys == nil {
		return nil, errors.New("lock key builder required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, keys: keys, ttl: ttl}, nil
}

func (l *RedisLocker) TryLock(ctx context.Context, job string) (func(context.Context) error, bool, error) {
	lock, err := l.client.Obtain(ctx, l.keys.CronLockKey(job), l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("obtain cron lock: %w", err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("release cron lock: %w", err)
		}
		return nil
	}, true, nil
}
