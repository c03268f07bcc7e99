package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
)

// Vocabulary seeded into categories and tags. Keep in sync with
// 20250101090000_create_vocabulary_tables.sql.
var (
	SeedCategories = []string{
		"BAR", "BAKERY", "CAFE", "CLUB", "FAST_FOOD",
		"PIZZERIA", "PUB", "RESTAURANT", "TEA_HOUSE", "WINE_BAR",
	}
	SeedTags = []string{
		"CARD_PAYMENT", "DELIVERY", "GLUTEN_FREE", "KIDS_FRIENDLY", "LIVE_MUSIC", "OUTDOOR_SEATING",
		"PARKING", "PET_FRIENDLY", "VEGAN", "VEGETARIAN", "WHEELCHAIR_ACCESSIBLE", "WIFI",
	}
)

// AutoMigrateModels creates the schema from the GORM models and seeds the
// vocabularies. Used for SQLite development databases and tests.
func AutoMigrateModels(ctx context.Context, conn *gorm.DB) error {
	conn = conn.WithContext(ctx)
	if err := conn.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return SeedVocabulary(ctx, conn)
}

// SeedVocabulary inserts the default categories and tags, skipping existing names.
func SeedVocabulary(ctx context.Context, conn *gorm.DB) error {
	conn = conn.WithContext(ctx)

	categories := make([]models.Category, 0, len(SeedCategories))
	for _, name := range SeedCategories {
		categories = append(categories, models.Category{Name: name})
	}
	if err := conn.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&categories).Error; err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	tags := make([]models.Tag, 0, len(SeedTags))
	for _, name := range SeedTags {
		tags = append(tags, models.Tag{Name: name})
	}
	if err := conn.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&tags).Error; err != nil {
		return fmt.Errorf("seed tags: %w", err)
	}
	return nil
}
