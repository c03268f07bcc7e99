package statistics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
)

const (
	defaultMonthLockTTL = 30 * time.Second
	lockRetryInterval   = 100 * time.Millisecond
	lockRetryAttempts   = 20
)

// MonthLocker single-flights the computation of one month across instances.
// unlock is only meaningful when obtained is true.
type MonthLocker interface {
	TryLock(ctx context.Context, month string) (unlock func(context.Context) error, obtained bool, err error)
}

type lockObtainer interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

type lockKeyer interface {
	StatisticsMonthLockKey(month string) string
}

// RedisMonthLocker implements MonthLocker with bsm/redislock. A caller that
// finds the month locked retries briefly so it can pick up the winner's row.
type RedisMonthLocker struct {
	client lockObtainer
	keys   lockKeyer
	ttl    time.Duration
}

func NewRedisMonthLocker(client lockObtainer, keys lockKeyer, ttl time.Duration) (*RedisMonthLocker, error) {
	if client == nil {
		return nil, errors.New("redis lock client required")
	}
	if keys == nil {
		return nil, errors.New("lock key builder required")
	}
	if ttl <= 0 {
		ttl = defaultMonthLockTTL
	}
	return &RedisMonthLocker{client: client, keys: keys, ttl: ttl}, nil
}

func (l *RedisMonthLocker) TryLock(ctx context.Context, month string) (func(context.Context) error, bool, error) {
	lock, err := l.client.Obtain(ctx, l.keys.StatisticsMonthLockKey(month), l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(lockRetryInterval), lockRetryAttempts),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("obtain month lock: %w", err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, true, nil
}
