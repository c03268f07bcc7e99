package establishments

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
)

// PictureKind enumerates the picture slots an establishment can fill.
type PictureKind int

const (
	PictureProfile PictureKind = iota + 1
	PictureBackground
	PictureMenuItem
	PicturePost
	PictureEvent
)

// PictureContext identifies which entity a picture belongs to. It is parsed
// once at the HTTP boundary; only the ids relevant to Kind are set.
type PictureContext struct {
	Kind    PictureKind
	MenuID  uuid.UUID
	ItemID  uuid.UUID
	PostID  uuid.UUID
	EventID uuid.UUID
}

func ProfilePicture() PictureContext { return PictureContext{Kind: PictureProfile} }
func BackgroundPicture() PictureContext { return PictureContext{Kind: PictureBackground} }

func MenuItemPicture(menuID, itemID uuid.UUID) PictureContext {
	return PictureContext{Kind: PictureMenuItem, MenuID: menuID, ItemID: itemID}
}

func PostPicture(postID uuid.UUID) PictureContext {
	return PictureContext{Kind: PicturePost, PostID: postID}
}

func EventPicture(eventID uuid.UUID) PictureContext {
	return PictureContext{Kind: PictureEvent, EventID: eventID}
}

// ParsePictureContext accepts profile, background, menu-item:<menuID>:<itemID>,
// post:<postID> and event:<eventID>.
func ParsePictureContext(token string) (PictureContext, error) {
	parts := strings.Split(strings.TrimSpace(token), ":")
	invalid := func() (PictureContext, error) {
		return PictureContext{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid picture context").
			WithDetails(map[string]any{"context": token})
	}

	switch strings.ToLower(parts[0]) {
	case "profile":
		if len(parts) != 1 {
			return invalid()
		}
		return ProfilePicture(), nil
	case "background":
		if len(parts) != 1 {
			return invalid()
		}
		return BackgroundPicture(), nil
	case "menu-item":
		if len(parts) != 3 {
			return invalid()
		}
		menuID, err := uuid.Parse(parts[1])
		if err != nil {
			return invalid()
		}
		itemID, err := uuid.Parse(parts[2])
		if err != nil {
			return invalid()
		}
		return MenuItemPicture(menuID, itemID), nil
	case "post", "event":
		if len(parts) != 2 {
			return invalid()
		}
		id, err := uuid.Parse(parts[1])
		if err != nil {
			return invalid()
		}
		if strings.EqualFold(parts[0], "post") {
			return PostPicture(id), nil
		}
		return EventPicture(id), nil
	default:
		return invalid()
	}
}

// StorageKey is the blob path segment under role/owner for this picture.
func (p PictureContext) StorageKey() string {
	switch p.Kind {
	case PictureProfile:
		return "profile"
	case PictureBackground:
		return "background"
	case PictureMenuItem:
		return fmt.Sprintf("menus/%s/items/%s", p.MenuID, p.ItemID)
	case PicturePost:
		return fmt.Sprintf("posts/%s", p.PostID)
	case PictureEvent:
		return fmt.Sprintf("events/%s", p.EventID)
	default:
		return ""
	}
}

func (p PictureContext) String() string {
	switch p.Kind {
	case PictureProfile:
		return "profile"
	case PictureBackground:
		return "background"
	case PictureMenuItem:
		return fmt.Sprintf("menu-item:%s:%s", p.MenuID, p.ItemID)
	case PicturePost:
		return fmt.Sprintf("post:%s", p.PostID)
	case PictureEvent:
		return fmt.Sprintf("event:%s", p.EventID)
	default:
		return "unknown"
	}
}
