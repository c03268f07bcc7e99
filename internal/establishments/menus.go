package establishments

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
)

func (s *service) CreateMenu(ctx context.Context, ref string, input MenuInput) (*MenuDTO, error) {
	if err := validateMenu(input); err != nil {
		return nil, err
	}
	establishment, err := s.loadOwned(ctx, ref)
	if err != nil {
		return nil, err
	}

	menu := &models.Menu{
		EstablishmentID: establishment.ID,
		Name:            strings.TrimSpace(input.Name),
		Items:           buildMenuItems(input.Items, nil),
	}
	if err := s.repo.CreateMenu(ctx, menu); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create menu")
	}
	dto := MenuFromModel(menu)
	return &dto, nil
}

// UpdateMenu renames the menu and replaces its items. Items passed back with
// their id keep their picture; pictures of dropped items are removed.
func (s *service) UpdateMenu(ctx context.Context, ref string, menuID uuid.UUID, input MenuInput) (*MenuDTO, error) {
	if err := validateMenu(input); err != nil {
		return nil, err
	}
	establishment, err := s.loadOwned(ctx, ref)
	if err != nil {
		return nil, err
	}
	menu, err := s.repo.FindMenu(ctx, establishment.ID, menuID)
	if err != nil {
		return nil, mapLoadError(err, "menu")
	}

	existing := make(map[uuid.UUID]models.MenuItem, len(menu.Items))
	for _, item := range menu.Items {
		existing[item.ID] = item
	}
	items := buildMenuItems(input.Items, existing)

	kept := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		kept[item.ID] = struct{}{}
	}

	menu.Name = strings.TrimSpace(input.Name)
	if err := s.repo.ReplaceMenuItems(ctx, menu, items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update menu")
	}

	for id, item := range existing {
		if _, ok := kept[id]; ok || item.PictureURL == nil {
			continue
		}
		s.deletePicture(ctx, ref, MenuItemPicture(menu.ID, id))
	}

	dto := MenuFromModel(menu)
	return &dto, nil
}

func (s *service) DeleteMenu(ctx context.Context, ref string, menuID uuid.UUID) error {
	establishment, err := s.loadOwned(ctx, ref)
	if err != nil {
		return err
	}
	menu, err := s.repo.FindMenu(ctx, establishment.ID, menuID)
	if err != nil {
		return mapLoadError(err, "menu")
	}

	if err := s.repo.DeleteMenu(ctx, establishment.ID, menuID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "menu not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete menu")
	}

	for _, item := range menu.Items {
		if item.PictureURL != nil {
			s.deletePicture(ctx, ref, MenuItemPicture(menuID, item.ID))
		}
	}
	return nil
}

func (s *service) DeleteMenuItem(ctx context.Context, ref string, menuID, itemID uuid.UUID) error {
	establishment, err := s.loadOwned(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteMenuItem(ctx, establishment.ID, menuID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete menu item")
	}
	s.deletePicture(ctx, ref, MenuItemPicture(menuID, itemID))
	return nil
}

// deletePicture removes a picture that no longer has an owner row. Failures
// only leave an unreachable object behind, so they are logged.
func (s *service) deletePicture(ctx context.Context, ref string, picture PictureContext) {
	if err := s.blobs.Delete(ctx, enums.RoleEstablishment, ref, picture.StorageKey()); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"identity_ref": ref,
			"picture":      picture.String(),
			"error":        err.Error(),
		}), "failed to delete orphaned picture")
	}
}

func validateMenu(input MenuInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "menu name is required")
	}
	for i, item := range input.Items {
		if strings.TrimSpace(item.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "menu item name is required").
				WithDetails(map[string]any{"index": i})
		}
		if item.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "menu item price must not be negative").
				WithDetails(map[string]any{"index": i})
		}
	}
	return nil
}

// buildMenuItems converts input into rows ordered by their input position.
func buildMenuItems(input []MenuItemInput, existing map[uuid.UUID]models.MenuItem) []models.MenuItem {
	items := make([]models.MenuItem, 0, len(input))
	reused := make(map[uuid.UUID]struct{}, len(input))
	for i, in := range input {
		item := models.MenuItem{
			Name:        strings.TrimSpace(in.Name),
			Description: strings.TrimSpace(in.Description),
			Price:       in.Price.Round(2),
			Position:    i,
		}
		if in.ID != nil {
			_, taken := reused[*in.ID]
			if prev, ok := existing[*in.ID]; ok && !taken {
				item.ID = prev.ID
				item.PictureURL = prev.PictureURL
				reused[prev.ID] = struct{}{}
			}
		}
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		items = append(items, item)
	}
	return items
}
