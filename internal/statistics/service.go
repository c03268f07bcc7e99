package statistics

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
)

const monthKeyLayout = "2006-01"

var yearPattern = regexp.MustCompile(`^\d{4}$`)

type statisticsRepository interface {
	GetByMonthKey(ctx context.Context, key string) (*models.MonthlyStatistic, error)
	CreateIfAbsent(ctx context.Context, stat *models.MonthlyStatistic) (*models.MonthlyStatistic, error)
}

// creationCounter counts rows created in [start, end).
type creationCounter interface {
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)
}

// Service reports monthly registration counts, materializing finished months
// on first read.
type Service interface {
	GetYear(ctx context.Context, year string) ([]MonthlyStatisticDTO, error)
	MaterializeMonth(ctx context.Context, month time.Time) (*MonthlyStatisticDTO, error)
}

type ServiceParams struct {
	Repo           statisticsRepository
	Establishments creationCounter
	Users          creationCounter
	Locker         MonthLocker
	Logger         *logger.Logger
	Clock          func() time.Time
}

type service struct {
	repo           statisticsRepository
	establishments creationCounter
	users          creationCounter
	locker         MonthLocker
	logg           *logger.Logger
	now            func() time.Time
}

// NewService builds the aggregator. Locker and Clock are optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("statistics repository required")
	}
	if params.Establishments == nil || params.Users == nil {
		return nil, fmt.Errorf("establishment and user counters required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:           params.Repo,
		establishments: params.Establishments,
		users:          params.Users,
		locker:         params.Locker,
		logg:           params.Logger,
		now:            clock,
	}, nil
}

// GetYear returns twelve entries, January first. Months that have not ended
// yet report zero and are not stored. A year entirely in the future yields
// an empty list.
func (s *service) GetYear(ctx context.Context, year string) ([]MonthlyStatisticDTO, error) {
	if !yearPattern.MatchString(year) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "year must have four digits").
			WithDetails(map[string]any{"year": year})
	}
	y, _ := strconv.Atoi(year)

	now := s.now().UTC()
	if y > now.Year() {
		return []MonthlyStatisticDTO{}, nil
	}

	out := make([]MonthlyStatisticDTO, 0, 12)
	for m := time.January; m <= time.December; m++ {
		start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		if !monthEnded(start, now) {
			out = append(out, MonthlyStatisticDTO{Date: start.Format(monthKeyLayout)})
			continue
		}
		stat, err := s.materialize(ctx, start)
		if err != nil {
			return nil, err
		}
		out = append(out, fromModel(stat))
	}
	return out, nil
}

// MaterializeMonth stores the counters of the month containing month. The
// month must already be over.
func (s *service) MaterializeMonth(ctx context.Context, month time.Time) (*MonthlyStatisticDTO, error) {
	month = month.UTC()
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	if !monthEnded(start, s.now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "month has not ended yet").
			WithDetails(map[string]any{"month": start.Format(monthKeyLayout)})
	}
	stat, err := s.materialize(ctx, start)
	if err != nil {
		return nil, err
	}
	dto := fromModel(stat)
	return &dto, nil
}

func (s *service) materialize(ctx context.Context, start time.Time) (*models.MonthlyStatistic, error) {
	key := start.Format(monthKeyLayout)
	stat, found, err := s.lookup(ctx, key)
	if err != nil || found {
		return stat, err
	}

	if s.locker != nil {
		unlock, obtained, err := s.locker.TryLock(ctx, key)
		switch {
		case err != nil:
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"month": key, "error": err.Error()}), "month lock unavailable")
		case obtained:
			defer func() {
				if err := unlock(context.WithoutCancel(ctx)); err != nil {
					s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"month": key, "error": err.Error()}), "failed to release month lock")
				}
			}()
		}
		// whoever held the lock may have stored the month meanwhile
		stat, found, err := s.lookup(ctx, key)
		if err != nil || found {
			return stat, err
		}
	}

	end := start.AddDate(0, 1, 0)
	establishments, err := s.establishments.CountCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count establishments")
	}
	users, err := s.users.CountCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}

	stored, err := s.repo.CreateIfAbsent(ctx, &models.MonthlyStatistic{
		Date:                       key,
		CreatedEstablishmentsCount: establishments,
		CreatedUsersCount:          users,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store monthly statistic")
	}
	s.logg.Info(s.logg.WithField(ctx, "month", key), "monthly statistic materialized")
	return stored, nil
}

func (s *service) lookup(ctx context.Context, key string) (*models.MonthlyStatistic, bool, error) {
	stat, err := s.repo.GetByMonthKey(ctx, key)
	if err == nil {
		return stat, true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load monthly statistic")
}

// monthEnded reports whether the month starting at start is over at now.
func monthEnded(start, now time.Time) bool {
	return !now.Before(start.AddDate(0, 1, 0))
}
