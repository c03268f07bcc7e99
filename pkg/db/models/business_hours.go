package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BusinessHours holds one free-form opening string per weekday.
type BusinessHours struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	EstablishmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Monday          string    `gorm:"column:monday;not null;default:''"`
	Tuesday         string    `gorm:"column:tuesday;not null;default:''"`
	Wednesday       string    `gorm:"column:wednesday;not null;default:''"`
	Thursday        string    `gorm:"column:thursday;not null;default:''"`
	Friday          string    `gorm:"column:friday;not null;default:''"`
	Saturday        string    `gorm:"column:saturday;not null;default:''"`
	Sunday          string    `gorm:"column:sunday;not null;default:''"`

	Exceptions []BusinessHoursException `gorm:"foreignKey:BusinessHoursID;constraint:OnDelete:CASCADE"`
}

func (BusinessHours) TableName() string { return "business_hours" }

func (b *BusinessHours) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BusinessHoursException overrides the weekly schedule for a single date.
type BusinessHoursException struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessHoursID uuid.UUID `gorm:"type:uuid;not null;index"`
	Date            time.Time `gorm:"column:date;type:date;not null"`
	Status          string    `gorm:"column:status;not null"`
}

func (b *BusinessHoursException) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
