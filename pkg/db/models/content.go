package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SocialLink struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	EstablishmentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Platform        string    `gorm:"column:platform;not null"`
	URL             string    `gorm:"column:url;not null"`
}

func (s *SocialLink) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Post is a short announcement published by an establishment.
type Post struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	EstablishmentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Headline        string    `gorm:"column:headline;not null"`
	Body            string    `gorm:"column:body;not null;default:''"`
	PictureURL      *string   `gorm:"column:picture_url"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Event struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	EstablishmentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title           string    `gorm:"column:title;not null"`
	Body            string    `gorm:"column:body;not null;default:''"`
	StartsAt        time.Time `gorm:"column:starts_at;not null"`
	PictureURL      *string   `gorm:"column:picture_url"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
