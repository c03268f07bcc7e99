package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Menu struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	EstablishmentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name            string    `gorm:"column:name;not null"`

	Items []MenuItem `gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE"`
}

func (m *Menu) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MenuItem is a priced entry of a menu; Position orders items inside their menu.
type MenuItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MenuID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	PictureURL  *string         `gorm:"column:picture_url"`
	Position    int             `gorm:"column:position;not null;default:0"`
}

func (m *MenuItem) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
