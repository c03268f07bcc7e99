package models

// All lists every persisted model in dependency order, for AutoMigrate in
// development and tests.
func All() []any {
	return []any{
		&Category{},
		&Tag{},
		&User{},
		&Establishment{},
		&BusinessHours{},
		&BusinessHoursException{},
		&Menu{},
		&MenuItem{},
		&SocialLink{},
		&RatingStatistic{},
		&Review{},
		&Post{},
		&Event{},
		&MonthlyStatistic{},
	}
}
