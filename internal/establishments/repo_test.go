package establishments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/migrate"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/pagination"
)

func openRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared&_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migrate.AutoMigrateModels(context.Background(), conn))
	return conn
}

type seedOptions struct {
	ref        string
	name       string
	status     enums.RequestStatus
	lat, lng   float64
	price      enums.PriceCategory
	categories []string
	tags       []string
}

func seedEstablishment(t *testing.T, conn *gorm.DB, opts seedOptions) *models.Establishment {
	t.Helper()
	var categories []models.Category
	if len(opts.categories) > 0 {
		require.NoError(t, conn.Where("name IN ?", opts.categories).Find(&categories).Error)
	}
	var tags []models.Tag
	if len(opts.tags) > 0 {
		require.NoError(t, conn.Where("name IN ?", opts.tags).Find(&tags).Error)
	}
	price := opts.price
	if price == "" {
		price = enums.PriceCategoryModerate
	}
	status := opts.status
	if status == "" {
		status = enums.RequestStatusAccepted
	}

	establishment := &models.Establishment{
		IdentityRef:     opts.ref,
		Name:            opts.name,
		Address:         "Hlavna 1",
		PostalCode:      "040 01",
		City:            "Kosice",
		Latitude:        opts.lat,
		Longitude:       opts.lng,
		PriceCategory:   price,
		RequestStatus:   status,
		Categories:      categories,
		Tags:            tags,
		RatingStatistic: &models.RatingStatistic{},
		BusinessHours:   &models.BusinessHours{},
	}
	require.NoError(t, NewRepository(conn).Create(context.Background(), establishment))
	return establishment
}

func searchNames(t *testing.T, repo Repository, query SearchQuery) []string {
	t.Helper()
	rows, err := repo.Search(context.Background(), query, pagination.Params{Page: 0, Size: 50})
	require.NoError(t, err)
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return names
}

func TestRepositorySearchRequiresEveryTag(t *testing.T) {
	conn := openRepoDB(t)
	repo := NewRepository(conn)

	seedEstablishment(t, conn, seedOptions{ref: "r1", name: "Both Tags", tags: []string{"WIFI", "VEGAN"}})
	seedEstablishment(t, conn, seedOptions{ref: "r2", name: "Wifi Only", tags: []string{"WIFI"}})
	seedEstablishment(t, conn, seedOptions{ref: "r3", name: "No Tags"})

	require.Equal(t, []string{"Both Tags"}, searchNames(t, repo, SearchQuery{Tags: []string{"WIFI", "VEGAN"}}))
	require.Equal(t, []string{"Both Tags", "Wifi Only"}, searchNames(t, repo, SearchQuery{Tags: []string{"WIFI"}}))
}

func TestRepositorySearchFilters(t *testing.T) {
	conn := openRepoDB(t)
	repo := NewRepository(conn)

	seedEstablishment(t, conn, seedOptions{ref: "r1", name: "Cafe Central", lat: 48.72, lng: 21.25, categories: []string{"CAFE"}, price: enums.PriceCategoryAffordable})
	seedEstablishment(t, conn, seedOptions{ref: "r2", name: "Bratislava Bar", lat: 48.14, lng: 17.10, categories: []string{"BAR"}})
	seedEstablishment(t, conn, seedOptions{ref: "r3", name: "Pending Cafe", lat: 48.71, lng: 21.26, categories: []string{"CAFE"}, status: enums.RequestStatusPending})

	kosice := BoundingBox{
		NorthWest: Coordinates{Lat: 48.8, Lng: 21.1},
		SouthEast: Coordinates{Lat: 48.6, Lng: 21.4},
	}
	require.Equal(t, []string{"Cafe Central"}, searchNames(t, repo, SearchQuery{Box: &kosice}))

	name := "cafe"
	require.Equal(t, []string{"Cafe Central"}, searchNames(t, repo, SearchQuery{Name: &name}))

	category := "BAR"
	require.Equal(t, []string{"Bratislava Bar"}, searchNames(t, repo, SearchQuery{Category: &category}))

	price := enums.PriceCategoryAffordable
	require.Equal(t, []string{"Cafe Central"}, searchNames(t, repo, SearchQuery{PriceCategory: &price}))

	rows, err := repo.Search(context.Background(), SearchQuery{}, pagination.Params{Page: 0, Size: 50})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, []string{"BAR"}, rows[0].CategoryNames())
}

func TestRepositorySearchNameMatchesWildcardsLiterally(t *testing.T) {
	conn := openRepoDB(t)
	repo := NewRepository(conn)

	seedEstablishment(t, conn, seedOptions{ref: "r1", name: "Cafe Central"})
	seedEstablishment(t, conn, seedOptions{ref: "r2", name: "Bar Nova"})
	seedEstablishment(t, conn, seedOptions{ref: "r3", name: "Happy %%% Hour"})
	seedEstablishment(t, conn, seedOptions{ref: "r4", name: "Snack___Corner"})
	seedEstablishment(t, conn, seedOptions{ref: "r5", name: `Back\slash Bistro`})

	for _, tc := range []struct {
		name string
		want []string
	}{
		{name: "%%%", want: []string{"Happy %%% Hour"}},
		{name: "___", want: []string{"Snack___Corner"}},
		{name: `k\s`, want: []string{`Back\slash Bistro`}},
		{name: "c%l", want: []string{}},
		{name: "HAPPY %", want: []string{"Happy %%% Hour"}},
	} {
		query, err := BuildSearchQuery(SearchFilters{Name: &tc.name}, 0)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.want, searchNames(t, repo, query), tc.name)
	}
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `100\% \_a\\b`, escapeLike(`100% _a\b`))
}

func TestRepositorySearchPages(t *testing.T) {
	conn := openRepoDB(t)
	repo := NewRepository(conn)

	for i, name := range []string{"Alpha", "Bravo", "Charlie"} {
		seedEstablishment(t, conn, seedOptions{ref: uuid.NewString(), name: name, lat: float64(i)})
	}

	first, err := repo.Search(context.Background(), SearchQuery{}, pagination.Params{Page: 0, Size: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	second, err := repo.Search(context.Background(), SearchQuery{}, pagination.Params{Page: 1, Size: 2})
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, "Charlie", second[0].Name)
}

func TestRepositoryAdjustRatingBucket(t *testing.T) {
	conn := openRepoDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	establishment := seedEstablishment(t, conn, seedOptions{ref: "r1", name: "Rated"})
	statID := establishment.RatingStatistic.ID
	require.NotEqual(t, uuid.Nil, statID)

	require.NoError(t, repo.AdjustRatingBucket(ctx, statID, 4, true))
	require.NoError(t, repo.AdjustRatingBucket(ctx, statID, 4, true))
	require.NoError(t, repo.AdjustRatingBucket(ctx, statID, 4, false))

	var stat models.RatingStatistic
	require.NoError(t, conn.First(&stat, "id = ?", statID).Error)
	require.Equal(t, 1, stat.FourStars)

	require.ErrorIs(t, repo.AdjustRatingBucket(ctx, statID, 2, false), ErrRatingBucketEmpty)
	require.ErrorIs(t, repo.AdjustRatingBucket(ctx, uuid.New(), 2, true), gorm.ErrRecordNotFound)
}

func TestRepositoryVisibilityAndNames(t *testing.T) {
	conn := openRepoDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seedEstablishment(t, conn, seedOptions{ref: "r1", name: "Waiting Room", status: enums.RequestStatusPending})

	exists, err := repo.CheckExistsByName(ctx, "Waiting Room")
	require.NoError(t, err)
	require.True(t, exists)
	exists, err = repo.CheckExistsByName(ctx, "Somewhere Else")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = repo.GetByIdentityRef(ctx, "r1", false)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	found, err := repo.GetByIdentityRef(ctx, "r1", true, PreloadRatingStatistic)
	require.NoError(t, err)
	require.NotNil(t, found.RatingStatistic)

	pending, err := repo.GetPendingList(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	duplicate := &models.Establishment{
		IdentityRef:   "r2",
		Name:          "Waiting Room",
		Address:       "Hlavna 2",
		PostalCode:    "040 01",
		City:          "Kosice",
		PriceCategory: enums.PriceCategoryModerate,
	}
	err = repo.Create(ctx, duplicate)
	require.Error(t, err)
	require.True(t, isNameConflict(err))
}

func TestRepositoryDeleteRemovesAggregate(t *testing.T) {
	conn := openRepoDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	establishment := seedEstablishment(t, conn, seedOptions{ref: "r1", name: "Short Lived", categories: []string{"PUB"}, tags: []string{"WIFI"}})
	require.NoError(t, repo.CreateMenu(ctx, &models.Menu{
		EstablishmentID: establishment.ID,
		Name:            "Drinks",
		Items:           []models.MenuItem{{Name: "Kofola", Price: decimal.NewFromInt(2)}},
	}))

	require.NoError(t, repo.DeleteByIdentityRef(ctx, "r1"))
	require.ErrorIs(t, repo.DeleteByIdentityRef(ctx, "r1"), gorm.ErrRecordNotFound)

	for _, model := range []any{&models.Establishment{}, &models.RatingStatistic{}, &models.BusinessHours{}, &models.Menu{}, &models.MenuItem{}} {
		var count int64
		require.NoError(t, conn.Model(model).Count(&count).Error)
		require.Zero(t, count, "%T rows left behind", model)
	}
	var links int64
	require.NoError(t, conn.Table("establishment_categories").Count(&links).Error)
	require.Zero(t, links)
}

func TestRepositoryMenuLifecycle(t *testing.T) {
	conn := openRepoDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	owner := seedEstablishment(t, conn, seedOptions{ref: "r1", name: "Owner"})
	other := seedEstablishment(t, conn, seedOptions{ref: "r2", name: "Other"})

	menu := &models.Menu{EstablishmentID: owner.ID, Name: "Lunch", Items: []models.MenuItem{
		{Name: "Soup", Price: decimal.NewFromInt(3), Position: 0},
		{Name: "Goulash", Price: decimal.NewFromInt(8), Position: 1},
	}}
	require.NoError(t, repo.CreateMenu(ctx, menu))

	_, err := repo.FindMenu(ctx, other.ID, menu.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	loaded, err := repo.FindMenu(ctx, owner.ID, menu.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	require.Equal(t, "Soup", loaded.Items[0].Name)

	loaded.Name = "Dinner"
	require.NoError(t, repo.ReplaceMenuItems(ctx, loaded, []models.MenuItem{
		{ID: uuid.New(), Name: "Steak", Price: decimal.NewFromInt(20), Position: 0},
	}))
	reloaded, err := repo.FindMenu(ctx, owner.ID, menu.ID)
	require.NoError(t, err)
	require.Equal(t, "Dinner", reloaded.Name)
	require.Len(t, reloaded.Items, 1)

	itemID := reloaded.Items[0].ID
	require.NoError(t, repo.UpdatePictureURL(ctx, owner.ID, MenuItemPicture(menu.ID, itemID), "https://cdn.test/steak.png"))
	require.ErrorIs(t, repo.UpdatePictureURL(ctx, other.ID, MenuItemPicture(menu.ID, itemID), "x"), gorm.ErrRecordNotFound)

	require.ErrorIs(t, repo.DeleteMenuItem(ctx, other.ID, menu.ID, itemID), gorm.ErrRecordNotFound)
	require.NoError(t, repo.DeleteMenuItem(ctx, owner.ID, menu.ID, itemID))

	require.ErrorIs(t, repo.DeleteMenu(ctx, other.ID, menu.ID), gorm.ErrRecordNotFound)
	require.NoError(t, repo.DeleteMenu(ctx, owner.ID, menu.ID))
}

func TestRepositoryReplaceChildren(t *testing.T) {
	conn := openRepoDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	establishment := seedEstablishment(t, conn, seedOptions{ref: "r1", name: "Changing", categories: []string{"BAR"}})

	var cafe []models.Category
	require.NoError(t, conn.Where("name = ?", "CAFE").Find(&cafe).Error)
	var wifi []models.Tag
	require.NoError(t, conn.Where("name = ?", "WIFI").Find(&wifi).Error)
	require.NoError(t, repo.ReplaceVocabulary(ctx, establishment, cafe, wifi))

	require.NoError(t, repo.ReplaceSocialLinks(ctx, establishment.ID, []models.SocialLink{{Platform: "instagram", URL: "https://instagram.com/changing"}}))
	require.NoError(t, repo.ReplaceSocialLinks(ctx, establishment.ID, []models.SocialLink{{Platform: "facebook", URL: "https://facebook.com/changing"}}))

	require.NoError(t, repo.ReplaceBusinessHours(ctx, establishment.ID, &models.BusinessHours{
		Monday:     "10:00-22:00",
		Exceptions: []models.BusinessHoursException{{Date: time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC), Status: "closed"}},
	}))
	require.NoError(t, repo.ReplaceBusinessHours(ctx, establishment.ID, &models.BusinessHours{Monday: "12:00-20:00"}))

	loaded, err := repo.GetByIdentityRef(ctx, "r1", true, PreloadCategories, PreloadTags, PreloadSocialLinks, PreloadBusinessHours)
	require.NoError(t, err)
	require.Equal(t, []string{"CAFE"}, loaded.CategoryNames())
	require.Equal(t, []string{"WIFI"}, loaded.TagNames())
	require.Len(t, loaded.SocialLinks, 1)
	require.Equal(t, "facebook", loaded.SocialLinks[0].Platform)
	require.NotNil(t, loaded.BusinessHours)
	require.Equal(t, "12:00-20:00", loaded.BusinessHours.Monday)
	require.Empty(t, loaded.BusinessHours.Exceptions)

	var exceptions int64
	require.NoError(t, conn.Model(&models.BusinessHoursException{}).Count(&exceptions).Error)
	require.Zero(t, exceptions)
}
