package statistics

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
)

// Repository persists materialized monthly statistics keyed by "YYYY-MM".
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByMonthKey returns gorm.ErrRecordNotFound when the month was never materialized.
func (r *Repository) GetByMonthKey(ctx context.Context, key string) (*models.MonthlyStatistic, error) {
	var stat models.MonthlyStatistic
	if err := r.db.WithContext(ctx).Where("date = ?", key).First(&stat).Error; err != nil {
		return nil, err
	}
	return &stat, nil
}

// CreateIfAbsent inserts stat unless its month already exists and returns the
// stored row. A concurrent writer that lost the insert reads the winner's values.
func (r *Repository) CreateIfAbsent(ctx context.Context, stat *models.MonthlyStatistic) (*models.MonthlyStatistic, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "date"}}, DoNothing: true}).
		Create(stat).Error
	if err != nil {
		return nil, err
	}
	return r.GetByMonthKey(ctx, stat.Date)
}
