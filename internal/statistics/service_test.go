package statistics

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.MonthlyStatistic{}))
	return conn
}

// stubCounter returns one per month number so every month has distinct values.
type stubCounter struct {
	offset int64
	calls  int
	err    error
}

func (s *stubCounter) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return int64(start.Month()) + s.offset, nil
}

type stubLocker struct {
	obtained bool
	err      error
	locks    int
	unlocks  int
}

func (s *stubLocker) TryLock(ctx context.Context, month string) (func(context.Context) error, bool, error) {
	s.locks++
	if s.err != nil || !s.obtained {
		return nil, false, s.err
	}
	return func(context.Context) error {
		s.unlocks++
		return nil
	}, true, nil
}

type statsFixture struct {
	conn           *gorm.DB
	establishments *stubCounter
	users          *stubCounter
	svc            Service
}

func newStatsFixture(t *testing.T, now time.Time, locker MonthLocker) *statsFixture {
	t.Helper()
	f := &statsFixture{
		conn:           openTestDB(t),
		establishments: &stubCounter{},
		users:          &stubCounter{offset: 100},
	}
	svc, err := NewService(ServiceParams{
		Repo:           NewRepository(f.conn),
		Establishments: f.establishments,
		Users:          f.users,
		Locker:         locker,
		Logger:         logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Clock:          func() time.Time { return now },
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func storedMonths(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Model(&models.MonthlyStatistic{}).Count(&count).Error)
	return count
}

func TestGetYearPastYearIsMaterializedOnce(t *testing.T) {
	f := newStatsFixture(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC), nil)
	ctx := context.Background()

	first, err := f.svc.GetYear(ctx, "2024")
	require.NoError(t, err)
	require.Len(t, first, 12)
	require.Equal(t, "2024-01", first[0].Date)
	require.Equal(t, "2024-12", first[11].Date)
	require.Equal(t, int64(3), first[2].CreatedEstablishmentsCount)
	require.Equal(t, int64(103), first[2].CreatedUsersCount)
	require.Equal(t, int64(12), storedMonths(t, f.conn))
	require.Equal(t, 12, f.establishments.calls)

	second, err := f.svc.GetYear(ctx, "2024")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 12, f.establishments.calls, "materialized months must not be recounted")
}

func TestGetYearCurrentYearSkipsUnfinishedMonths(t *testing.T) {
	f := newStatsFixture(t, time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC), nil)

	months, err := f.svc.GetYear(context.Background(), "2025")
	require.NoError(t, err)
	require.Len(t, months, 12)
	require.Equal(t, int64(2), months[1].CreatedEstablishmentsCount)
	for _, m := range months[2:] {
		require.Zero(t, m.CreatedEstablishmentsCount, m.Date)
		require.Zero(t, m.CreatedUsersCount, m.Date)
	}
	require.Equal(t, "2025-03", months[2].Date)
	require.Equal(t, int64(2), storedMonths(t, f.conn))
}

func TestGetYearRejectsMalformedAndFutureYears(t *testing.T) {
	f := newStatsFixture(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), nil)
	ctx := context.Background()

	for _, year := range []string{"abcd", "202", "20245", ""} {
		_, err := f.svc.GetYear(ctx, year)
		require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err), year)
	}

	months, err := f.svc.GetYear(ctx, "2026")
	require.NoError(t, err)
	require.NotNil(t, months)
	require.Empty(t, months)
	require.Zero(t, storedMonths(t, f.conn))
}

func TestGetYearAdoptsExistingRow(t *testing.T) {
	f := newStatsFixture(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, f.conn.Create(&models.MonthlyStatistic{Date: "2025-01", CreatedEstablishmentsCount: 7, CreatedUsersCount: 8}).Error)

	months, err := f.svc.GetYear(context.Background(), "2025")
	require.NoError(t, err)
	require.Equal(t, int64(7), months[0].CreatedEstablishmentsCount)
	require.Equal(t, int64(8), months[0].CreatedUsersCount)
	require.Zero(t, f.establishments.calls)
}

func TestCreateIfAbsentKeepsFirstWriter(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	first, err := repo.CreateIfAbsent(ctx, &models.MonthlyStatistic{Date: "2024-05", CreatedEstablishmentsCount: 1, CreatedUsersCount: 2})
	require.NoError(t, err)
	require.Equal(t, int64(1), first.CreatedEstablishmentsCount)

	second, err := repo.CreateIfAbsent(ctx, &models.MonthlyStatistic{Date: "2024-05", CreatedEstablishmentsCount: 9, CreatedUsersCount: 9})
	require.NoError(t, err)
	require.Equal(t, int64(1), second.CreatedEstablishmentsCount)
	require.Equal(t, int64(2), second.CreatedUsersCount)

	_, err = repo.GetByMonthKey(ctx, "2024-06")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMaterializeMonthUsesLocker(t *testing.T) {
	locker := &stubLocker{obtained: true}
	f := newStatsFixture(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), locker)
	ctx := context.Background()

	stat, err := f.svc.MaterializeMonth(ctx, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "2025-01", stat.Date)
	require.Equal(t, 1, locker.locks)
	require.Equal(t, 1, locker.unlocks)

	_, err = f.svc.MaterializeMonth(ctx, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestMaterializeMonthProceedsWithoutLock(t *testing.T) {
	locker := &stubLocker{err: errors.New("redis down")}
	f := newStatsFixture(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), locker)

	stat, err := f.svc.MaterializeMonth(context.Background(), time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, int64(12), stat.CreatedEstablishmentsCount)
	require.Zero(t, locker.unlocks)

	locker.err = nil
	stat, err = f.svc.MaterializeMonth(context.Background(), time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "2024-11", stat.Date)
}

func TestCounterFailureIsDependencyError(t *testing.T) {
	f := newStatsFixture(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), nil)
	f.users.err = errors.New("db down")

	_, err := f.svc.GetYear(context.Background(), "2024")
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	require.Zero(t, storedMonths(t, f.conn))
}
