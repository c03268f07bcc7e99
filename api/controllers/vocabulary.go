package controllers

import (
	"context"
	"net/http"

	"github.com/SamuelGunda/NowAround-Backend-sub000/api/responses"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db/models"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
)

type CategoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

type TagLister interface {
	List(ctx context.Context) ([]models.Tag, error)
}

// ListCategories returns the category vocabulary as plain names.
func ListCategories(repo CategoryLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories"))
			return
		}
		names := make([]string, 0, len(rows))
		for _, row := range rows {
			names = append(names, row.Name)
		}
		responses.WriteSuccess(w, names)
	}
}

func ListTags(repo TagLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tags"))
			return
		}
		names := make([]string, 0, len(rows))
		for _, row := range rows {
			names = append(names, row.Name)
		}
		responses.WriteSuccess(w, names)
	}
}
