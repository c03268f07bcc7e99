package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bsm/redislock"
)

type fakeObtainer struct {
	key string
	ttl time.Duration
	err error
}

func (f *fakeObtainer) Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error) {
	f.key, f.ttl = key, ttl
	return nil, f.err
}

type cronKeys struct{}

func (cronKeys) CronLockKey(job string) string { return "nowaround:lock:cron:" + job }

func TestRedisLockerHeldElsewhere(t *testing.T) {
	obtainer := &fakeObtainer{err: redislock.ErrNotObtained}
	locker, err := NewRedisLocker(obtainer, cronKeys{}, 0)
	if err != nil {
		t.Fatalf("new locker: %v", err)
	}
	_, obtained, err := locker.TryLock(context.Background(), "monthly-statistics")
	if err != nil || obtained {
		t.Fatalf("expected not obtained without error, got obtained=%v err=%v", obtained, err)
	}
	if obtainer.key != "nowaround:lock:cron:monthly-statistics" || obtainer.ttl != defaultLockTTL {
		t.Fatalf("unexpected obtain call key=%q ttl=%s", obtainer.key, obtainer.ttl)
	}
}

func TestRedisLockerWrapsErrors(t *testing.T) {
	boom := errors.New("i/o timeout")
	locker, err := NewRedisLocker(&fakeObtainer{err: boom}, cronKeys{}, time.Minute)
	if err != nil {
		t.Fatalf("new locker: %v", err)
	}
	if _, _, err := locker.TryLock(context.Background(), "job"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
