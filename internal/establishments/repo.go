package establishments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an establishments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CheckExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Establishment{}).
		Where("name = ?", strings.TrimSpace(name)).
		Count(&count).Error
	return count > 0, err
}

// GetByIdentityRef loads an establishment by its identity reference. Unless
// includeInactive is set only accepted establishments are visible.
func (r *repository) GetByIdentityRef(ctx context.Context, ref string, includeInactive bool, preloads ...string) (*models.Establishment, error) {
	query := r.db.WithContext(ctx).Where("identity_ref = ?", ref)
	if !includeInactive {
		query = query.Where("request_status = ?", enums.RequestStatusAccepted)
	}
	for _, path := range preloads {
		if path == PreloadMenus {
			query = query.Preload("Menus", func(db *gorm.DB) *gorm.DB {
				return db.Order("menus.name ASC")
			}).Preload(path, func(db *gorm.DB) *gorm.DB {
				return db.Order("menu_items.position ASC")
			})
			continue
		}
		query = query.Preload(path)
	}

	var establishment models.Establishment
	if err := query.First(&establishment).Error; err != nil {
		return nil, err
	}
	return &establishment, nil
}

func (r *repository) GetPendingList(ctx context.Context) ([]models.Establishment, error) {
	var rows []models.Establishment
	err := r.db.WithContext(ctx).
		Where("request_status = ?", enums.RequestStatusPending).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Search returns one page of accepted establishments matching query.
func (r *repository) Search(ctx context.Context, query SearchQuery, page pagination.Params) ([]models.Establishment, error) {
	stmt := r.db.WithContext(ctx).
		Model(&models.Establishment{}).
		Where("establishments.request_status = ?", enums.RequestStatusAccepted)

	if query.Name != nil {
		stmt = stmt.Where(`LOWER(establishments.name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(*query.Name))+"%")
	}
	if query.PriceCategory != nil {
		stmt = stmt.Where("establishments.price_category = ?", *query.PriceCategory)
	}
	if query.Category != nil {
		withCategory := r.db.Table("establishment_categories AS ec").
			Select("ec.establishment_id").
			Joins("JOIN categories c ON c.id = ec.category_id").
			Where("c.name = ?", *query.Category)
		stmt = stmt.Where("establishments.id IN (?)", withCategory)
	}
	if len(query.Tags) > 0 {
		withAllTags := r.db.Table("establishment_tags AS et").
			Select("et.establishment_id").
			Joins("JOIN tags t ON t.id = et.tag_id").
			Where("t.name IN ?", query.Tags).
			Group("et.establishment_id").
			Having("COUNT(DISTINCT t.name) = ?", len(query.Tags))
		stmt = stmt.Where("establishments.id IN (?)", withAllTags)
	}
	if query.Box != nil {
		stmt = stmt.
			Where("establishments.latitude BETWEEN ? AND ?", query.Box.SouthEast.Lat, query.Box.NorthWest.Lat).
			Where("establishments.longitude BETWEEN ? AND ?", query.Box.NorthWest.Lng, query.Box.SouthEast.Lng)
	}

	var rows []models.Establishment
	err := stmt.
		Preload("Categories").
		Order("establishments.name ASC").
		Order("establishments.id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&rows).Error
	return rows, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE metacharacters in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Create inserts the aggregate with its vocabulary links and one-to-one children.
func (r *repository) Create(ctx context.Context, establishment *models.Establishment) error {
	if establishment == nil {
		return fmt.Errorf("establishment is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Categories.*", "Tags.*").Create(establishment).Error
	})
}

// Update saves the establishment's own columns; children are replaced explicitly.
func (r *repository) Update(ctx context.Context, establishment *models.Establishment) error {
	if establishment == nil {
		return fmt.Errorf("establishment is required")
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(establishment).Error
}

// DeleteByIdentityRef removes the row and, through the foreign keys, every child.
// Vocabulary links are removed explicitly.
func (r *repository) DeleteByIdentityRef(ctx context.Context, ref string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var establishment models.Establishment
		if err := tx.Select("id").Where("identity_ref = ?", ref).First(&establishment).Error; err != nil {
			return err
		}
		for _, joinTable := range []string{"establishment_categories", "establishment_tags"} {
			if err := tx.Exec("DELETE FROM "+joinTable+" WHERE establishment_id = ?", establishment.ID).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", establishment.ID).Delete(&models.Establishment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CountCreatedBetween counts establishments created in [start, end).
func (r *repository) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Establishment{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

// AdjustRatingBucket moves one star bucket by one in a single statement.
// Decrements never go below zero.
func (r *repository) AdjustRatingBucket(ctx context.Context, statisticID uuid.UUID, star int, increment bool) error {
	column, ok := models.RatingBucketColumn(star)
	if !ok {
		return fmt.Errorf("invalid star value %d", star)
	}

	stmt := r.db.WithContext(ctx).Model(&models.RatingStatistic{}).Where("id = ?", statisticID)
	expr := gorm.Expr(column + " + 1")
	if !increment {
		stmt = stmt.Where(column + " > 0")
		expr = gorm.Expr(column + " - 1")
	}

	res := stmt.UpdateColumn(column, expr)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.RatingStatistic{}).Where("id = ?", statisticID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrRatingBucketEmpty
}

func (r *repository) ReplaceVocabulary(ctx context.Context, establishment *models.Establishment, categories []models.Category, tags []models.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(establishment).Association("Categories").Replace(categories); err != nil {
			return err
		}
		return tx.Model(establishment).Association("Tags").Replace(tags)
	})
}

func (r *repository) ReplaceSocialLinks(ctx context.Context, establishmentID uuid.UUID, links []models.SocialLink) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("establishment_id = ?", establishmentID).Delete(&models.SocialLink{}).Error; err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}
		for i := range links {
			links[i].EstablishmentID = establishmentID
		}
		return tx.Create(&links).Error
	})
}

// ReplaceBusinessHours swaps the weekly schedule and its exceptions.
func (r *repository) ReplaceBusinessHours(ctx context.Context, establishmentID uuid.UUID, hours *models.BusinessHours) error {
	if hours == nil {
		return fmt.Errorf("business hours are required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing := tx.Model(&models.BusinessHours{}).Select("id").Where("establishment_id = ?", establishmentID)
		if err := tx.Where("business_hours_id IN (?)", existing).Delete(&models.BusinessHoursException{}).Error; err != nil {
			return err
		}
		if err := tx.Where("establishment_id = ?", establishmentID).Delete(&models.BusinessHours{}).Error; err != nil {
			return err
		}
		hours.ID = uuid.Nil
		hours.EstablishmentID = establishmentID
		return tx.Create(hours).Error
	})
}

func (r *repository) CreateMenu(ctx context.Context, menu *models.Menu) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(menu).Error
	})
}

// FindMenu loads a menu owned by the establishment, with items in position order.
func (r *repository) FindMenu(ctx context.Context, establishmentID, menuID uuid.UUID) (*models.Menu, error) {
	var menu models.Menu
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("menu_items.position ASC")
		}).
		Where("id = ? AND establishment_id = ?", menuID, establishmentID).
		First(&menu).Error
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

// ReplaceMenuItems renames the menu and swaps its items.
func (r *repository) ReplaceMenuItems(ctx context.Context, menu *models.Menu, items []models.MenuItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Menu{}).Where("id = ?", menu.ID).UpdateColumn("name", menu.Name).Error; err != nil {
			return err
		}
		if err := tx.Where("menu_id = ?", menu.ID).Delete(&models.MenuItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			menu.Items = nil
			return nil
		}
		for i := range items {
			items[i].MenuID = menu.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		menu.Items = items
		return nil
	})
}

func (r *repository) DeleteMenu(ctx context.Context, establishmentID, menuID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND establishment_id = ?", menuID, establishmentID).Delete(&models.Menu{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("menu_id = ?", menuID).Delete(&models.MenuItem{}).Error
	})
}

func (r *repository) DeleteMenuItem(ctx context.Context, establishmentID, menuID, itemID uuid.UUID) error {
	owned := r.db.Model(&models.Menu{}).Select("id").Where("id = ? AND establishment_id = ?", menuID, establishmentID)
	res := r.db.WithContext(ctx).
		Where("id = ? AND menu_id IN (?)", itemID, owned).
		Delete(&models.MenuItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindPost(ctx context.Context, establishmentID, postID uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ? AND establishment_id = ?", postID, establishmentID).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *repository) FindEvent(ctx context.Context, establishmentID, eventID uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Where("id = ? AND establishment_id = ?", eventID, establishmentID).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdatePictureURL stores url in the column the picture context points at.
func (r *repository) UpdatePictureURL(ctx context.Context, establishmentID uuid.UUID, picture PictureContext, url string) error {
	db := r.db.WithContext(ctx)

	var res *gorm.DB
	switch picture.Kind {
	case PictureProfile:
		res = db.Model(&models.Establishment{}).Where("id = ?", establishmentID).UpdateColumn("profile_picture_url", url)
	case PictureBackground:
		res = db.Model(&models.Establishment{}).Where("id = ?", establishmentID).UpdateColumn("background_picture_url", url)
	case PictureMenuItem:
		owned := r.db.Model(&models.Menu{}).Select("id").Where("id = ? AND establishment_id = ?", picture.MenuID, establishmentID)
		res = db.Model(&models.MenuItem{}).Where("id = ? AND menu_id IN (?)", picture.ItemID, owned).UpdateColumn("picture_url", url)
	case PicturePost:
		res = db.Model(&models.Post{}).Where("id = ? AND establishment_id = ?", picture.PostID, establishmentID).UpdateColumn("picture_url", url)
	case PictureEvent:
		res = db.Model(&models.Event{}).Where("id = ? AND establishment_id = ?", picture.EventID, establishmentID).UpdateColumn("picture_url", url)
	default:
		return fmt.Errorf("unsupported picture context %d", picture.Kind)
	}

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
