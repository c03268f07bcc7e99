package statistics

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
	f.key = key
	f.ttl = ttl
	return nil, f.err
}

type prefixKeys struct{}

func (prefixKeys) StatisticsMonthLockKey(month string) string { return "nowaround:lock:statistics:" + month }

func TestRedisMonthLockerNotObtainedIsNotAnError(t *testing.T) {
	obtainer := &fakeObtainer{err: redislock.ErrNotObtained}
	locker, err := NewRedisMonthLocker(obtainer, prefixKeys{}, 0)
	if err != nil {
		t.Fatalf("new locker: %v", err)
	}

	_, obtained, err := locker.TryLock(context.Background(), "2024-05")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if obtained {
		t.Fatal("expected lock not obtained")
	}
	if obtainer.key != "nowaround:lock:statistics:2024-05" {
		t.Fatalf("unexpected key %q", obtainer.key)
	}
	if obtainer.ttl != defaultMonthLockTTL {
		t.Fatalf("expected default ttl, got %s", obtainer.ttl)
	}
}

func TestRedisMonthLockerSurfacesRedisErrors(t *testing.T) {
	boom := errors.New("connection refused")
	locker, err := NewRedisMonthLocker(&fakeObtainer{err: boom}, prefixKeys{}, time.Second)
	if err != nil {
		t.Fatalf("new locker: %v", err)
	}
	if _, _, err := locker.TryLock(context.Background(), "2024-05"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped redis error, got %v", err)
	}
	if _, err := NewRedisMonthLocker(nil, prefixKeys{}, 0); err == nil {
		t.Fatal("expected error without client")
	}
}
