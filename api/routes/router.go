package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SamuelGunda/NowAround-Backend-sub000/api/controllers"
	"github.com/SamuelGunda/NowAround-Backend-sub000/api/middleware"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/establishments"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/reviews"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/statistics"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/config"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
)

// RouterParams carries everything the HTTP surface is built from.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	Readiness      map[string]controllers.Pinger
	Verifier       middleware.TokenVerifier
	Establishments establishments.Service
	Reviews        reviews.Service
	Statistics     statistics.Service
	Categories     controllers.CategoryLister
	Tags           controllers.TagLister
}

func NewRouter(p RouterParams) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Readiness, logg))
	})

	authenticated := middleware.Auth(p.Verifier, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", controllers.ListCategories(p.Categories, logg))
		r.Get("/tags", controllers.ListTags(p.Tags, logg))

		r.Route("/establishments", func(r chi.Router) {
			r.Post("/", controllers.RegisterEstablishment(p.Establishments, logg))
			r.Get("/search", controllers.SearchEstablishments(p.Establishments, logg))

			r.Route("/me", func(r chi.Router) {
				r.Use(authenticated, middleware.RequireRole(enums.RoleEstablishment, logg))

				r.Get("/", controllers.OwnProfile(p.Establishments, logg))
				r.Delete("/", controllers.DeleteOwnEstablishment(p.Establishments, logg))
				r.Put("/generic", controllers.UpdateGenericInfo(p.Establishments, logg))
				r.Put("/location", controllers.UpdateLocationInfo(p.Establishments, logg))
				r.Put("/pictures/{context}", controllers.UpdatePicture(p.Establishments, logg))

				r.Route("/menus", func(r chi.Router) {
					r.Post("/", controllers.CreateMenu(p.Establishments, logg))
					r.Put("/{menuID}", controllers.UpdateMenu(p.Establishments, logg))
					r.Delete("/{menuID}", controllers.DeleteMenu(p.Establishments, logg))
					r.Delete("/{menuID}/items/{itemID}", controllers.DeleteMenuItem(p.Establishments, logg))
				})
			})

			r.Get("/{ref}", controllers.EstablishmentProfile(p.Establishments, logg))
			r.With(authenticated, middleware.RequireRole(enums.RoleUser, logg)).
				Post("/{ref}/reviews", controllers.CreateReview(p.Reviews, logg))
		})

		r.With(authenticated, middleware.RequireRole(enums.RoleUser, logg)).
			Delete("/reviews/{reviewID}", controllers.DeleteReview(p.Reviews, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(authenticated, middleware.RequireRole(enums.RoleAdmin, logg))

		r.Get("/establishments/pending", controllers.PendingEstablishments(p.Establishments, logg))
		r.Put("/establishments/{ref}/status", controllers.UpdateRegistrationStatus(p.Establishments, logg))
		r.Delete("/establishments/{ref}", controllers.AdminDeleteEstablishment(p.Establishments, logg))
		r.Get("/statistics/{year}", controllers.YearStatistics(p.Statistics, logg))
	})

	return r
}
