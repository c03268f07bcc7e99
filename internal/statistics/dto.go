package statistics

import "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"

// MonthlyStatisticDTO is one month of the yearly report.
type MonthlyStatisticDTO struct {
	Date                       string `json:"date"`
	CreatedEstablishmentsCount int64  `json:"created_establishments_count"`
	CreatedUsersCount          int64  `json:"created_users_count"`
}

func fromModel(m *models.MonthlyStatistic) MonthlyStatisticDTO {
	return MonthlyStatisticDTO{
		Date:                       m.Date,
		CreatedEstablishmentsCount: m.CreatedEstablishmentsCount,
		CreatedUsersCount:          m.CreatedUsersCount,
	}
}
