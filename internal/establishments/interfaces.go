package establishments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/pagination"
)

// Preload paths accepted by GetByIdentityRef.
const (
	PreloadCategories      = "Categories"
	PreloadTags            = "Tags"
	PreloadBusinessHours   = "BusinessHours.Exceptions"
	PreloadMenus           = "Menus.Items"
	PreloadSocialLinks     = "SocialLinks"
	PreloadRatingStatistic = "RatingStatistic"
	PreloadPosts           = "Posts"
	PreloadEvents          = "Events"
)

// ErrRatingBucketEmpty is returned when a decrement would drive a bucket below zero.
var ErrRatingBucketEmpty = errors.New("rating bucket is already empty")

// Repository persists the establishment aggregate.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CheckExistsByName(ctx context.Context, name string) (bool, error)
	GetByIdentityRef(ctx context.Context, ref string, includeInactive bool, preloads ...string) (*models.Establishment, error)
	GetPendingList(ctx context.Context) ([]models.Establishment, error)
	Search(ctx context.Context, query SearchQuery, page pagination.Params) ([]models.Establishment, error)
	Create(ctx context.Context, establishment *models.Establishment) error
	Update(ctx context.Context, establishment *models.Establishment) error
	DeleteByIdentityRef(ctx context.Context, ref string) error
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)

	AdjustRatingBucket(ctx context.Context, statisticID uuid.UUID, star int, increment bool) error

	ReplaceVocabulary(ctx context.Context, establishment *models.Establishment, categories []models.Category, tags []models.Tag) error
	ReplaceSocialLinks(ctx context.Context, establishmentID uuid.UUID, links []models.SocialLink) error
	ReplaceBusinessHours(ctx context.Context, establishmentID uuid.UUID, hours *models.BusinessHours) error

	CreateMenu(ctx context.Context, menu *models.Menu) error
	FindMenu(ctx context.Context, establishmentID, menuID uuid.UUID) (*models.Menu, error)
	ReplaceMenuItems(ctx context.Context, menu *models.Menu, items []models.MenuItem) error
	DeleteMenu(ctx context.Context, establishmentID, menuID uuid.UUID) error
	DeleteMenuItem(ctx context.Context, establishmentID, menuID, itemID uuid.UUID) error

	FindPost(ctx context.Context, establishmentID, postID uuid.UUID) (*models.Post, error)
	FindEvent(ctx context.Context, establishmentID, eventID uuid.UUID) (*models.Event, error)
	UpdatePictureURL(ctx context.Context, establishmentID uuid.UUID, picture PictureContext, url string) error
}
