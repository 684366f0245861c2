package router

import (
	"net/http"

	"telar/internal/cache"
	"telar/internal/config"
	"telar/internal/database"
	"telar/internal/handlers/api/v1/achievements"
	"telar/internal/handlers/api/v1/categories"
	"telar/internal/handlers/api/v1/products"
	"telar/internal/handlers/api/v1/progress"
	"telar/internal/middleware"
	"telar/internal/response"
	"telar/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Dependencies carries everything the router needs to wire the API
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *database.Manager
	Cache    cache.Cache
	Services *services.ServiceCollection
	Builder  *response.Builder
}

// New builds the HTTP handler with the full middleware stack and API surface
func New(deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Recovery(deps.Builder, deps.Logger))

	auth := middleware.NewAuth(&deps.Config.Auth, deps.Builder, deps.Logger)

	r.Get("/health", healthHandler(deps))

	r.Route("/api/v1", func(r chi.Router) {
		mountProgress(r, deps, auth)
		mountAchievements(r, deps)
		mountProducts(r, deps)
		mountCategories(r, deps)
	})

	return r
}

func mountProgress(r chi.Router, deps *Dependencies, auth *middleware.Auth) {
	controller := progress.NewController(deps.Services, deps.Builder, deps.Logger)

	r.Route("/user-progress", func(r chi.Router) {
		r.Post("/", controller.Create)
		r.Get("/", controller.List)
		r.Get("/leaderboard", controller.GetLeaderboard)
		r.Get("/user/{userId}", controller.GetByUser)

		// The caller's identity comes from the bearer token.
		r.With(auth.Require).Post("/update", controller.UpdateProgress)

		r.Post("/{userId}/experience", controller.AddExperience)
		r.Post("/{userId}/mission", controller.CompleteMission)
		r.Post("/{userId}/streak", controller.UpdateStreak)
		r.Post("/{userId}/time", controller.AddTimeSpent)

		r.Get("/{id}", controller.GetByID)
		r.Patch("/{id}", controller.Update)
		r.Delete("/{id}", controller.Delete)
	})
}

func mountAchievements(r chi.Router, deps *Dependencies) {
	controller := achievements.NewController(deps.Services, deps.Builder, deps.Logger)

	r.Route("/achievements", func(r chi.Router) {
		r.Post("/", controller.Create)
		r.Get("/", controller.List)
		r.Get("/user/{userId}", controller.ListByUser)
		r.Get("/{id}", controller.GetByID)
		r.Delete("/{id}", controller.Delete)
	})
}

func mountProducts(r chi.Router, deps *Dependencies) {
	controller := products.NewController(deps.Services, deps.Builder, deps.Logger)

	r.Route("/products", func(r chi.Router) {
		r.Post("/", controller.Create)
		r.Get("/", controller.List)
		r.Get("/active", controller.List)
		r.Get("/featured", controller.ListFeatured)
		r.Get("/shop/{shopId}", controller.ListMarketplaceByShop)
		r.Get("/user/{userId}", controller.ListMarketplaceByUser)

		r.Route("/marketplace", func(r chi.Router) {
			r.Get("/", controller.ListMarketplace)
			r.Get("/featured", controller.ListFeatured)
			r.Get("/shop/{shopId}", controller.ListMarketplaceByShop)
			r.Get("/user/{userId}", controller.ListMarketplaceByUser)
			r.Get("/{id}", controller.GetMarketplaceByID)
		})

		r.Get("/{id}", controller.GetByID)
		r.Patch("/{id}", controller.Update)
		r.Delete("/{id}", controller.Delete)
	})
}

func mountCategories(r chi.Router, deps *Dependencies) {
	controller := categories.NewController(deps.Services, deps.Builder, deps.Logger)

	r.Route("/categories", func(r chi.Router) {
		r.Post("/", controller.Create)
		r.Get("/", controller.List)
		r.Get("/roots", controller.ListRoots)
		r.Get("/active", controller.ListActive)
		r.Get("/tree", controller.GetTree)
		r.Get("/slug/{slug}", controller.GetBySlug)
		r.Get("/{id}", controller.GetByID)
		r.Get("/{id}/children", controller.ListChildren)
		r.Patch("/{id}", controller.Update)
		r.Delete("/{id}", controller.Delete)
	})
}

// healthHandler reports database and cache health
func healthHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{
			"status":   "ok",
			"database": "ok",
			"cache":    "ok",
		}
		healthy := true

		if err := deps.DB.Health(r.Context()); err != nil {
			status["database"] = err.Error()
			status["status"] = "degraded"
			healthy = false
		}
		if err := deps.Cache.Health(r.Context()); err != nil {
			status["cache"] = err.Error()
			status["status"] = "degraded"
			healthy = false
		}

		if !healthy {
			deps.Builder.WriteJSON(w, r, deps.Builder.Success(r.Context(), status), http.StatusServiceUnavailable)
			return
		}
		deps.Builder.WriteSuccess(w, r, status)
	}
}
