package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SamuelGunda/NowAround-Backend-sub000/api/middleware"
	"github.com/SamuelGunda/NowAround-Backend-sub000/api/responses"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/establishments"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
)

const maxPictureBytes = 5 << 20

// UpdatePicture stores the raw request body as the picture addressed by the
// {context} path segment and returns its public URL.
func UpdatePicture(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		picture, err := establishments.ParsePictureContext(chi.URLParam(r, "context"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPictureBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				err = pkgerrors.New(pkgerrors.CodeValidation, "picture too large").
					WithDetails(map[string]any{"max_bytes": maxPictureBytes})
			} else {
				err = pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read picture")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := svc.UpdatePicture(r.Context(), middleware.IdentityRefFromContext(r.Context()), picture, data)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"url": url})
	}
}
