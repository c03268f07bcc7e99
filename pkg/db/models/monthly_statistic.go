package models

// MonthlyStatistic is the materialized counter pair of one calendar month,
// keyed by "YYYY-MM".
type MonthlyStatistic struct {
	Date                       string `gorm:"column:date;primaryKey"`
	CreatedEstablishmentsCount int64  `gorm:"column:created_establishments_count;not null;default:0"`
	CreatedUsersCount          int64  `gorm:"column:created_users_count;not null;default:0"`
}
