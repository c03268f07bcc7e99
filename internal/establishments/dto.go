package establishments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
)

// RegisterInput holds what an owner submits when registering a venue.
type RegisterInput struct {
	Establishment EstablishmentInfo
	Owner         OwnerInput
}

type EstablishmentInfo struct {
	Name          string
	Description   string
	Address       string
	PostalCode    string
	City          string
	PriceCategory enums.PriceCategory
	Categories    []string
	Tags          []string
}

type OwnerInput struct {
	FirstName string
	LastName  string
	Email     string
}

// GenericInfoInput replaces the descriptive part of a profile.
type GenericInfoInput struct {
	Name          string
	Description   string
	PriceCategory enums.PriceCategory
	Categories    []string
	Tags          []string
	SocialLinks   []SocialLinkInput
}

type SocialLinkInput struct {
	Platform string
	URL      string
}

// LocationInput moves the establishment and replaces its business hours.
type LocationInput struct {
	Lat           float64
	Lng           float64
	BusinessHours *BusinessHoursInput
}

type BusinessHoursInput struct {
	Monday     string
	Tuesday    string
	Wednesday  string
	Thursday   string
	Friday     string
	Saturday   string
	Sunday     string
	Exceptions []BusinessHoursExceptionInput
}

type BusinessHoursExceptionInput struct {
	Date   time.Time
	Status string
}

// MenuInput creates or replaces a menu. Items keep their picture when an
// existing item id is passed back.
type MenuInput struct {
	Name  string
	Items []MenuItemInput
}

type MenuItemInput struct {
	ID          *uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
}

// EstablishmentMarker is a map pin returned by search.
type EstablishmentMarker struct {
	IdentityRef   string              `json:"identity_ref"`
	Name          string              `json:"name"`
	Lat           float64             `json:"lat"`
	Lng           float64             `json:"lng"`
	PriceCategory enums.PriceCategory `json:"price_category"`
	Categories    []string            `json:"categories"`
}

// PendingEstablishmentDTO is a row of the admin review queue.
type PendingEstablishmentDTO struct {
	IdentityRef string    `json:"identity_ref"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProfileDTO exposes the full establishment aggregate.
type ProfileDTO struct {
	IdentityRef          string              `json:"identity_ref"`
	Name                 string              `json:"name"`
	Description          string              `json:"description"`
	Address              string              `json:"address"`
	PostalCode           string              `json:"postal_code"`
	City                 string              `json:"city"`
	Lat                  float64             `json:"lat"`
	Lng                  float64             `json:"lng"`
	PriceCategory        enums.PriceCategory `json:"price_category"`
	RequestStatus        enums.RequestStatus `json:"request_status"`
	ProfilePictureURL    string              `json:"profile_picture_url"`
	BackgroundPictureURL string              `json:"background_picture_url"`
	Categories           []string            `json:"categories"`
	Tags                 []string            `json:"tags"`
	BusinessHours        *BusinessHoursDTO   `json:"business_hours,omitempty"`
	Menus                []MenuDTO           `json:"menus"`
	SocialLinks          []SocialLinkDTO     `json:"social_links"`
	Rating               *RatingDTO          `json:"rating,omitempty"`
	Posts                []PostDTO           `json:"posts"`
	Events               []EventDTO          `json:"events"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

type BusinessHoursDTO struct {
	Monday     string                      `json:"monday"`
	Tuesday    string                      `json:"tuesday"`
	Wednesday  string                      `json:"wednesday"`
	Thursday   string                      `json:"thursday"`
	Friday     string                      `json:"friday"`
	Saturday   string                      `json:"saturday"`
	Sunday     string                      `json:"sunday"`
	Exceptions []BusinessHoursExceptionDTO `json:"exceptions"`
}

type BusinessHoursExceptionDTO struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

type MenuDTO struct {
	ID    uuid.UUID     `json:"id"`
	Name  string        `json:"name"`
	Items []MenuItemDTO `json:"items"`
}

type MenuItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	PictureURL  *string         `json:"picture_url,omitempty"`
}

type SocialLinkDTO struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// RatingDTO carries the star buckets plus derived totals.
type RatingDTO struct {
	ID         uuid.UUID `json:"id"`
	OneStar    int       `json:"one_star"`
	TwoStars   int       `json:"two_stars"`
	ThreeStars int       `json:"three_stars"`
	FourStars  int       `json:"four_stars"`
	FiveStars  int       `json:"five_stars"`
	Count      int       `json:"count"`
	Average    float64   `json:"average"`
}

type PostDTO struct {
	ID         uuid.UUID `json:"id"`
	Headline   string    `json:"headline"`
	Body       string    `json:"body"`
	PictureURL *string   `json:"picture_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type EventDTO struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	StartsAt   time.Time `json:"starts_at"`
	PictureURL *string   `json:"picture_url,omitempty"`
}

// MarkerFromModel maps a search row into a map pin.
func MarkerFromModel(m *models.Establishment) EstablishmentMarker {
	return EstablishmentMarker{
		IdentityRef:   m.IdentityRef,
		Name:          m.Name,
		Lat:           m.Latitude,
		Lng:           m.Longitude,
		PriceCategory: m.PriceCategory,
		Categories:    m.CategoryNames(),
	}
}

func PendingFromModel(m *models.Establishment) PendingEstablishmentDTO {
	return PendingEstablishmentDTO{
		IdentityRef: m.IdentityRef,
		Name:        m.Name,
		City:        m.City,
		CreatedAt:   m.CreatedAt,
	}
}

// ProfileFromModel maps the aggregate into a DTO. Children that were not
// preloaded come out empty.
func ProfileFromModel(m *models.Establishment) *ProfileDTO {
	if m == nil {
		return nil
	}

	dto := &ProfileDTO{
		IdentityRef:          m.IdentityRef,
		Name:                 m.Name,
		Description:          m.Description,
		Address:              m.Address,
		PostalCode:           m.PostalCode,
		City:                 m.City,
		Lat:                  m.Latitude,
		Lng:                  m.Longitude,
		PriceCategory:        m.PriceCategory,
		RequestStatus:        m.RequestStatus,
		ProfilePictureURL:    m.ProfilePictureURL,
		BackgroundPictureURL: m.BackgroundPictureURL,
		Categories:           m.CategoryNames(),
		Tags:                 m.TagNames(),
		Menus:                make([]MenuDTO, 0, len(m.Menus)),
		SocialLinks:          make([]SocialLinkDTO, 0, len(m.SocialLinks)),
		Posts:                make([]PostDTO, 0, len(m.Posts)),
		Events:               make([]EventDTO, 0, len(m.Events)),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}

	if h := m.BusinessHours; h != nil {
		hours := &BusinessHoursDTO{
			Monday:     h.Monday,
			Tuesday:    h.Tuesday,
			Wednesday:  h.Wednesday,
			Thursday:   h.Thursday,
			Friday:     h.Friday,
			Saturday:   h.Saturday,
			Sunday:     h.Sunday,
			Exceptions: make([]BusinessHoursExceptionDTO, 0, len(h.Exceptions)),
		}
		for _, ex := range h.Exceptions {
			hours.Exceptions = append(hours.Exceptions, BusinessHoursExceptionDTO{
				Date:   ex.Date.Format(time.DateOnly),
				Status: ex.Status,
			})
		}
		dto.BusinessHours = hours
	}
	for i := range m.Menus {
		dto.Menus = append(dto.Menus, MenuFromModel(&m.Menus[i]))
	}
	for _, link := range m.SocialLinks {
		dto.SocialLinks = append(dto.SocialLinks, SocialLinkDTO{Platform: link.Platform, URL: link.URL})
	}
	if m.RatingStatistic != nil {
		dto.Rating = RatingFromModel(m.RatingStatistic)
	}
	for _, p := range m.Posts {
		dto.Posts = append(dto.Posts, PostDTO{ID: p.ID, Headline: p.Headline, Body: p.Body, PictureURL: p.PictureURL, CreatedAt: p.CreatedAt})
	}
	for _, e := range m.Events {
		dto.Events = append(dto.Events, EventDTO{ID: e.ID, Title: e.Title, Body: e.Body, StartsAt: e.StartsAt, PictureURL: e.PictureURL})
	}
	return dto
}

func MenuFromModel(m *models.Menu) MenuDTO {
	dto := MenuDTO{ID: m.ID, Name: m.Name, Items: make([]MenuItemDTO, 0, len(m.Items))}
	for _, item := range m.Items {
		dto.Items = append(dto.Items, MenuItemDTO{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			PictureURL:  item.PictureURL,
		})
	}
	return dto
}

func RatingFromModel(r *models.RatingStatistic) *RatingDTO {
	dto := &RatingDTO{
		ID:         r.ID,
		OneStar:    r.OneStar,
		TwoStars:   r.TwoStars,
		ThreeStars: r.ThreeStars,
		FourStars:  r.FourStars,
		FiveStars:  r.FiveStars,
	}
	dto.Count = r.OneStar + r.TwoStars + r.ThreeStars + r.FourStars + r.FiveStars
	if dto.Count > 0 {
		sum := r.OneStar + 2*r.TwoStars + 3*r.ThreeStars + 4*r.FourStars + 5*r.FiveStars
		dto.Average = float64(sum) / float64(dto.Count)
	}
	return dto
}
