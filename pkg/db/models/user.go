package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the local mirror of an end-user identity account.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	IdentityRef string    `gorm:"column:identity_ref;not null;uniqueIndex"`
	FullName    string    `gorm:"column:full_name;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
