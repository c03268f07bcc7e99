package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RatingStatistic keeps one counter per star value.
type RatingStatistic struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	EstablishmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	OneStar         int       `gorm:"column:one_star;not null;default:0"`
	TwoStars        int       `gorm:"column:two_stars;not null;default:0"`
	ThreeStars      int       `gorm:"column:three_stars;not null;default:0"`
	FourStars       int       `gorm:"column:four_stars;not null;default:0"`
	FiveStars       int       `gorm:"column:five_stars;not null;default:0"`

	Reviews []Review `gorm:"foreignKey:RatingStatisticID;constraint:OnDelete:CASCADE"`
}

func (r *RatingStatistic) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RatingBucketColumn maps a star value to its counter column.
func RatingBucketColumn(star int) (string, bool) {
	switch star {
	case 1:
		return "one_star", true
	case 2:
		return "two_stars", true
	case 3:
		return "three_stars", true
	case 4:
		return "four_stars", true
	case 5:
		return "five_stars", true
	default:
		return "", false
	}
}

// Review is a single user's rating of an establishment.
type Review struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	RatingStatisticID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_statistic_user"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_statistic_user"`
	Rating            int       `gorm:"column:rating;not null"`
	Body              string    `gorm:"column:body;not null;default:''"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
