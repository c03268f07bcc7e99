package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/statistics"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
)

const monthlyStatisticsJobName = "monthly-statistics"

type monthMaterializer interface {
	MaterializeMonth(ctx context.Context, month time.Time) (*statistics.MonthlyStatisticDTO, error)
}

type MonthlyStatisticsJobParams struct {
	Logger     *logger.Logger
	Statistics monthMaterializer
	Clock      func() time.Time
}

// MonthlyStatisticsJob stores the previous calendar month so the first admin
// read of the year report does not have to count it.
type MonthlyStatisticsJob struct {
	logg       *logger.Logger
	statistics monthMaterializer
	now        func() time.Time
}

func NewMonthlyStatisticsJob(params MonthlyStatisticsJobParams) (*MonthlyStatisticsJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Statistics == nil {
		return nil, fmt.Errorf("statistics service required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &MonthlyStatisticsJob{logg: params.Logger, statistics: params.Statistics, now: clock}, nil
}

func (j *MonthlyStatisticsJob) Name() string { return monthlyStatisticsJobName }

func (j *MonthlyStatisticsJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	previous := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)

	stat, err := j.statistics.MaterializeMonth(ctx, previous)
	if err != nil {
		return fmt.Errorf("materialize %s: %w", previous.Format("2006-01"), err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"month":          stat.Date,
		"establishments": stat.CreatedEstablishmentsCount,
		"users":          stat.CreatedUsersCount,
	}), "monthly statistic ready")
	return nil
}
