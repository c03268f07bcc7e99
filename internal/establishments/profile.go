package establishments

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
)

// UpdateGenericInfo replaces name, description, price, vocabulary and social
// links in one transaction. A changed name must still be unique.
func (s *service) UpdateGenericInfo(ctx context.Context, ref string, input GenericInfoInput) (*ProfileDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.PriceCategory.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid price category").
			WithDetails(map[string]any{"price_category": input.PriceCategory.String()})
	}
	links := make([]models.SocialLink, 0, len(input.SocialLinks))
	for _, link := range input.SocialLinks {
		platform := strings.TrimSpace(link.Platform)
		url := strings.TrimSpace(link.URL)
		if platform == "" || url == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "social links need a platform and url")
		}
		links = append(links, models.SocialLink{Platform: platform, URL: url})
	}

	establishment, err := s.loadOwned(ctx, ref)
	if err != nil {
		return nil, err
	}
	if name != establishment.Name {
		exists, err := s.repo.CheckExistsByName(ctx, name)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check establishment name")
		}
		if exists {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "establishment name already in use")
		}
	}

	categories, tags, err := s.resolveVocabulary(ctx, input.Categories, input.Tags)
	if err != nil {
		return nil, err
	}

	establishment.Name = name
	establishment.Description = strings.TrimSpace(input.Description)
	establishment.PriceCategory = input.PriceCategory

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, establishment); err != nil {
			return err
		}
		if err := repo.ReplaceVocabulary(ctx, establishment, categories, tags); err != nil {
			return err
		}
		return repo.ReplaceSocialLinks(ctx, establishment.ID, links)
	})
	if err != nil {
		if isNameConflict(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "establishment name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update establishment")
	}
	return s.GetOwnProfile(ctx, ref)
}

// UpdateLocationInfo moves the establishment to the given coordinates,
// resolving the street address, and replaces its business hours.
func (s *service) UpdateLocationInfo(ctx context.Context, ref string, input LocationInput) (*ProfileDTO, error) {
	if input.BusinessHours == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business hours are required")
	}
	if input.Lat < -90 || input.Lat > 90 || input.Lng < -180 || input.Lng > 180 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range").
			WithDetails(map[string]any{"lat": input.Lat, "lng": input.Lng})
	}

	establishment, err := s.loadOwned(ctx, ref)
	if err != nil {
		return nil, err
	}

	address, city, err := s.geocoder.ResolveAddress(ctx, input.Lat, input.Lng)
	if err != nil {
		return nil, err
	}

	establishment.Latitude = input.Lat
	establishment.Longitude = input.Lng
	establishment.Address = address
	establishment.City = city

	hours := businessHoursFromInput(input.BusinessHours)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, establishment); err != nil {
			return err
		}
		return repo.ReplaceBusinessHours(ctx, establishment.ID, hours)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update location")
	}
	return s.GetOwnProfile(ctx, ref)
}

// UpdatePicture uploads data for the picture slot and stores the resulting
// URL. The target entity must exist before anything is uploaded.
func (s *service) UpdatePicture(ctx context.Context, ref string, picture PictureContext, data []byte) (string, error) {
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "picture is empty")
	}

	establishment, err := s.loadOwned(ctx, ref)
	if err != nil {
		return "", err
	}
	if err := s.ensurePictureTarget(ctx, establishment, picture); err != nil {
		return "", err
	}

	url, err := s.blobs.UploadPicture(ctx, data, enums.RoleEstablishment, ref, picture.StorageKey())
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdatePictureURL(ctx, establishment.ID, picture, url); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "picture target not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store picture url")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"identity_ref": ref,
		"picture":      picture.String(),
	}), "picture updated")
	return url, nil
}

func (s *service) ensurePictureTarget(ctx context.Context, establishment *models.Establishment, picture PictureContext) error {
	switch picture.Kind {
	case PictureProfile, PictureBackground:
		return nil
	case PictureMenuItem:
		menu, err := s.repo.FindMenu(ctx, establishment.ID, picture.MenuID)
		if err != nil {
			return mapLoadError(err, "menu")
		}
		for _, item := range menu.Items {
			if item.ID == picture.ItemID {
				return nil
			}
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	case PicturePost:
		if _, err := s.repo.FindPost(ctx, establishment.ID, picture.PostID); err != nil {
			return mapLoadError(err, "post")
		}
		return nil
	case PictureEvent:
		if _, err := s.repo.FindEvent(ctx, establishment.ID, picture.EventID); err != nil {
			return mapLoadError(err, "event")
		}
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid picture context")
	}
}

func businessHoursFromInput(in *BusinessHoursInput) *models.BusinessHours {
	hours := &models.BusinessHours{
		Monday:    strings.TrimSpace(in.Monday),
		Tuesday:   strings.TrimSpace(in.Tuesday),
		Wednesday: strings.TrimSpace(in.Wednesday),
		Thursday:  strings.TrimSpace(in.Thursday),
		Friday:    strings.TrimSpace(in.Friday),
		Saturday:  strings.TrimSpace(in.Saturday),
		Sunday:    strings.TrimSpace(in.Sunday),
	}
	for _, ex := range in.Exceptions {
		hours.Exceptions = append(hours.Exceptions, models.BusinessHoursException{
			Date:   ex.Date,
			Status: strings.TrimSpace(ex.Status),
		})
	}
	return hours
}
