package tags

import (
	"context"

	"gorm.io/gorm"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
)

// Repository resolves the seeded tag vocabulary.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByNames returns the tags matching names. Missing names are simply absent
// from the result; callers decide whether that is a fault.
func (r *Repository) FindByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return []models.Tag{}, nil
	}
	var rows []models.Tag
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns the whole vocabulary ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Tag, error) {
	var rows []models.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
