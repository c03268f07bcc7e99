package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
)

const (
	DefaultProfilePictureURL    = "https://storage.googleapis.com/nowaround-public/placeholders/profile.png"
	DefaultBackgroundPictureURL = "https://storage.googleapis.com/nowaround-public/placeholders/background.png"
)

// Establishment is the root aggregate of a registered venue.
type Establishment struct {
	ID                   uuid.UUID           `gorm:"type:uuid;primaryKey"`
	IdentityRef          string              `gorm:"column:identity_ref;not null;uniqueIndex"`
	Name                 string              `gorm:"column:name;not null;uniqueIndex"`
	Description          string              `gorm:"column:description;not null;default:''"`
	Address              string              `gorm:"column:address;not null"`
	PostalCode           string              `gorm:"column:postal_code;not null"`
	City                 string              `gorm:"column:city;not null"`
	Latitude             float64             `gorm:"column:latitude;not null"`
	Longitude            float64             `gorm:"column:longitude;not null"`
	PriceCategory        enums.PriceCategory `gorm:"column:price_category;not null"`
	RequestStatus        enums.RequestStatus `gorm:"column:request_status;not null;default:'pending'"`
	ProfilePictureURL    string              `gorm:"column:profile_picture_url;not null"`
	BackgroundPictureURL string              `gorm:"column:background_picture_url;not null"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Categories      []Category       `gorm:"many2many:establishment_categories;constraint:OnDelete:CASCADE"`
	Tags            []Tag            `gorm:"many2many:establishment_tags;constraint:OnDelete:CASCADE"`
	BusinessHours   *BusinessHours   `gorm:"foreignKey:EstablishmentID;constraint:OnDelete:CASCADE"`
	Menus           []Menu           `gorm:"foreignKey:EstablishmentID;constraint:OnDelete:CASCADE"`
	SocialLinks     []SocialLink     `gorm:"foreignKey:EstablishmentID;constraint:OnDelete:CASCADE"`
	RatingStatistic *RatingStatistic `gorm:"foreignKey:EstablishmentID;constraint:OnDelete:CASCADE"`
	Posts           []Post           `gorm:"foreignKey:EstablishmentID;constraint:OnDelete:CASCADE"`
	Events          []Event          `gorm:"foreignKey:EstablishmentID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns ids and placeholder pictures for rows built in memory.
func (e *Establishment) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.RequestStatus == "" {
		e.RequestStatus = enums.RequestStatusPending
	}
	if e.ProfilePictureURL == "" {
		e.ProfilePictureURL = DefaultProfilePictureURL
	}
	if e.BackgroundPictureURL == "" {
		e.BackgroundPictureURL = DefaultBackgroundPictureURL
	}
	return nil
}

// CategoryNames flattens the loaded categories.
func (e *Establishment) CategoryNames() []string {
	names := make([]string, 0, len(e.Categories))
	for _, c := range e.Categories {
		names = append(names, c.Name)
	}
	return names
}

// TagNames flattens the loaded tags.
func (e *Establishment) TagNames() []string {
	names := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		names = append(names, t.Name)
	}
	return names
}
