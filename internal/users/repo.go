package users

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user mirror row.
func (r *Repository) Create(ctx context.Context, identityRef, fullName string) (*models.User, error) {
	user := &models.User{IdentityRef: identityRef, FullName: fullName}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByIdentityRef retrieves the user owning the identity-provider reference.
func (r *Repository) FindByIdentityRef(ctx context.Context, ref string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("identity_ref = ?", ref).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CountCreatedBetween counts users created in [start, end).
func (r *Repository) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}
