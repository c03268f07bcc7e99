package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/SamuelGunda/NowAround-Backend-sub000/api/responses"
	"github.com/SamuelGunda/NowAround-Backend-sub000/api/validators"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/establishments"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/statistics"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
)

// PendingEstablishments lists registrations waiting for a decision.
func PendingEstablishments(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, err := svc.GetPendingList(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pending)
	}
}

type registrationStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateRegistrationStatus accepts or rejects a pending registration.
func UpdateRegistrationStatus(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body registrationStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseRequestStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]any{"status": body.Status}))
			return
		}

		ref := strings.TrimSpace(chi.URLParam(r, "ref"))
		if err := svc.UpdateRegistrationStatus(r.Context(), ref, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func AdminDeleteEstablishment(svc establishments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := strings.TrimSpace(chi.URLParam(r, "ref"))
		if err := svc.Delete(r.Context(), ref); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// YearStatistics returns the monthly registration counters of {year}.
func YearStatistics(svc statistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.GetYear(r.Context(), chi.URLParam(r, "year"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
