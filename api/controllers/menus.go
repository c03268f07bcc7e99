package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SamuelGunda/NowAround-Backend-sub000/api/middleware"
	"github.com/SamuelGunda/NowAround-Backend-sub000/api/responses"
	"github.com/SamuelGunda/NowAround-Backend-sub000/api/validators"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/establishments"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
)

type menuItemRequest struct {
	ID          *uuid.UUID      `json:"id,omitempty"`
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Price       decimal.Decimal `json:"price"`
}

type menuRequest struct {
	Name  string            `json:"name" validate:"required,max=100"`
	Items []menuItemRequest `json:"items" validate:"dive"`
}

func (r menuRequest) toInput() establishments.MenuInput {
	items := make([]establishments.MenuItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, establishments.MenuItemInput{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
		})
	}
	return establishments.MenuInput{Name: r.Name, Items: items}
}

func CreateMenu(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body menuRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		menu, err := svc.CreateMenu(r.Context(), middleware.IdentityRefFromContext(r.Context()), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, menu)
	}
}

// UpdateMenu replaces the menu name and its full item list.
func UpdateMenu(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		menuID, err := validators.ParseUUIDParam(r, "menuID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body menuRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		menu, err := svc.UpdateMenu(r.Context(), middleware.IdentityRefFromContext(r.Context()), menuID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, menu)
	}
}

func DeleteMenu(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		menuID, err := validators.ParseUUIDParam(r, "menuID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteMenu(r.Context(), middleware.IdentityRefFromContext(r.Context()), menuID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func DeleteMenuItem(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		menuID, err := validators.ParseUUIDParam(r, "menuID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParseUUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteMenuItem(r.Context(), middleware.IdentityRefFromContext(r.Context()), menuID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
