package controllers

import (
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/SamuelGunda/NowAround-Backend-sub000/api/middleware"
	"github.com/SamuelGunda/NowAround-Backend-sub000/api/responses"
	"github.com/SamuelGunda/NowAround-Backend-sub000/api/validators"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/establishments"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
)

type registerEstablishmentRequest struct {
	Establishment struct {
		Name          string   `json:"name" validate:"required,max=100"`
		Description   string   `json:"description" validate:"max=2000"`
		Address       string   `json:"address" validate:"required,max=200"`
		PostalCode    string   `json:"postal_code" validate:"required,max=16"`
		City          string   `json:"city" validate:"required,max=100"`
		PriceCategory string   `json:"price_category" validate:"required,price_category"`
		Categories    []string `json:"categories" validate:"required,min=1"`
		Tags          []string `json:"tags"`
	} `json:"establishment"`
	Owner struct {
		FirstName string `json:"first_name" validate:"required,max=100"`
		LastName  string `json:"last_name" validate:"required,max=100"`
		Email     string `json:"email" validate:"required,email"`
	} `json:"owner"`
}

func (r registerEstablishmentRequest) toInput() establishments.RegisterInput {
	price, _ := enums.ParsePriceCategory(r.Establishment.PriceCategory)
	return establishments.RegisterInput{
		Establishment: establishments.EstablishmentInfo{
			Name:          r.Establishment.Name,
			Description:   r.Establishment.Description,
			Address:       r.Establishment.Address,
			PostalCode:    r.Establishment.PostalCode,
			City:          r.Establishment.City,
			PriceCategory: price,
			Categories:    r.Establishment.Categories,
			Tags:          r.Establishment.Tags,
		},
		Owner: establishments.OwnerInput{
			FirstName: r.Owner.FirstName,
			LastName:  r.Owner.LastName,
			Email:     r.Owner.Email,
		},
	}
}

// RegisterEstablishment submits a new venue for admin review.
func RegisterEstablishment(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body registerEstablishmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Register(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, profile)
	}
}

// SearchEstablishments returns one page of map markers. The bounding box is
// given as nw_lat, nw_lng, se_lat and se_lng and may be omitted entirely
// when another filter is present.
func SearchEstablishments(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseSearchFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParseQueryInt(r, "page", 0, math.MinInt32, math.MaxInt32)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		markers, err := svc.Search(r.Context(), filters, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, markers)
	}
}

func parseSearchFilters(r *http.Request) (establishments.SearchFilters, error) {
	filters := establishments.SearchFilters{
		Name:     validators.ParseQueryString(r, "name"),
		Category: validators.ParseQueryString(r, "category"),
		Tags:     validators.ParseQueryList(r, "tags"),
	}
	if raw := validators.ParseQueryString(r, "price_category"); raw != nil {
		price, err := enums.ParsePriceCategory(*raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid price category").
				WithDetails(map[string]any{"field": "price_category"})
		}
		filters.PriceCategory = &price
	}

	query := r.URL.Query()
	if !query.Has("nw_lat") && !query.Has("nw_lng") && !query.Has("se_lat") && !query.Has("se_lng") {
		return filters, nil
	}
	var err error
	if filters.Box.NorthWest.Lat, err = validators.ParseQueryFloat(r, "nw_lat", -90, 90); err != nil {
		return filters, err
	}
	if filters.Box.NorthWest.Lng, err = validators.ParseQueryFloat(r, "nw_lng", -180, 180); err != nil {
		return filters, err
	}
	if filters.Box.SouthEast.Lat, err = validators.ParseQueryFloat(r, "se_lat", -90, 90); err != nil {
		return filters, err
	}
	if filters.Box.SouthEast.Lng, err = validators.ParseQueryFloat(r, "se_lng", -180, 180); err != nil {
		return filters, err
	}
	return filters, nil
}

// EstablishmentProfile is the public profile of an accepted establishment.
func EstablishmentProfile(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := strings.TrimSpace(chi.URLParam(r, "ref"))
		if ref == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "establishment ref required"))
			return
		}
		profile, err := svc.GetProfile(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// OwnProfile returns the caller's establishment whatever its review status.
func OwnProfile(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := svc.GetOwnProfile(r.Context(), middleware.IdentityRefFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type socialLinkRequest struct {
	Platform string `json:"platform" validate:"required,max=50"`
	URL      string `json:"url" validate:"required,url"`
}

type genericInfoRequest struct {
	Name          string              `json:"name" validate:"required,max=100"`
	Description   string              `json:"description" validate:"max=2000"`
	PriceCategory string              `json:"price_category" validate:"required,price_category"`
	Categories    []string            `json:"categories" validate:"required,min=1"`
	Tags          []string            `json:"tags"`
	SocialLinks   []socialLinkRequest `json:"social_links" validate:"dive"`
}

func (r genericInfoRequest) toInput() establishments.GenericInfoInput {
	price, _ := enums.ParsePriceCategory(r.PriceCategory)
	links := make([]establishments.SocialLinkInput, 0, len(r.SocialLinks))
	for _, link := range r.SocialLinks {
		links = append(links, establishments.SocialLinkInput{Platform: link.Platform, URL: link.URL})
	}
	return establishments.GenericInfoInput{
		Name:          r.Name,
		Description:   r.Description,
		PriceCategory: price,
		Categories:    r.Categories,
		Tags:          r.Tags,
		SocialLinks:   links,
	}
}

func UpdateGenericInfo(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body genericInfoRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.UpdateGenericInfo(r.Context(), middleware.IdentityRefFromContext(r.Context()), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type businessHoursExceptionRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Status string `json:"status" validate:"required,max=50"`
}

type businessHoursRequest struct {
	Monday     string                          `json:"monday" validate:"max=50"`
	Tuesday    string                          `json:"tuesday" validate:"max=50"`
	Wednesday  string                          `json:"wednesday" validate:"max=50"`
	Thursday   string                          `json:"thursday" validate:"max=50"`
	Friday     string                          `json:"friday" validate:"max=50"`
	Saturday   string                          `json:"saturday" validate:"max=50"`
	Sunday     string                          `json:"sunday" validate:"max=50"`
	Exceptions []businessHoursExceptionRequest `json:"exceptions" validate:"dive"`
}

type locationRequest struct {
	Lat           *float64              `json:"lat" validate:"required,latitude"`
	Lng           *float64              `json:"lng" validate:"required,longitude"`
	BusinessHours *businessHoursRequest `json:"business_hours"`
}

func (r locationRequest) toInput() (establishments.LocationInput, error) {
	input := establishments.LocationInput{Lat: *r.Lat, Lng: *r.Lng}
	if r.BusinessHours == nil {
		return input, nil
	}
	hours := &establishments.BusinessHoursInput{
		Monday:    r.BusinessHours.Monday,
		Tuesday:   r.BusinessHours.Tuesday,
		Wednesday: r.BusinessHours.Wednesday,
		Thursday:  r.BusinessHours.Thursday,
		Friday:    r.BusinessHours.Friday,
		Saturday:  r.BusinessHours.Saturday,
		Sunday:    r.BusinessHours.Sunday,
	}
	for _, ex := range r.BusinessHours.Exceptions {
		date, err := parseDate(ex.Date)
		if err != nil {
			return input, err
		}
		hours.Exceptions = append(hours.Exceptions, establishments.BusinessHoursExceptionInput{Date: date, Status: ex.Status})
	}
	input.BusinessHours = hours
	return input, nil
}

func UpdateLocationInfo(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body locationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.UpdateLocationInfo(r.Context(), middleware.IdentityRefFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// DeleteOwnEstablishment lets an owner close their account.
func DeleteOwnEstablishment(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), middleware.IdentityRefFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
