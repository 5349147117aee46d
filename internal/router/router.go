package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appLogger "github.com/FACorreiaa/go-travel-planner/app/logger"
	appMiddleware "github.com/FACorreiaa/go-travel-planner/app/middleware"
	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/api/checklist"
	"github.com/FACorreiaa/go-travel-planner/internal/api/member"
	"github.com/FACorreiaa/go-travel-planner/internal/api/plan"
	"github.com/FACorreiaa/go-travel-planner/internal/api/recommend"
	"github.com/FACorreiaa/go-travel-planner/internal/api/region"
	"github.com/FACorreiaa/go-travel-planner/internal/api/spot"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            *auth.HandlerImpl
	MemberHandler          *member.HandlerImpl
	PlanHandler            *plan.HandlerImpl
	SpotHandler            *spot.HandlerImpl
	ChecklistHandler       *checklist.HandlerImpl
	RegionHandler          *region.HandlerImpl
	RecommendHandler       *recommend.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
	RequestTimeout         time.Duration
	RecommendRateLimit     int
	Logger                 *slog.Logger
}

// SetupRouter initializes the application router with the server-wide
// middleware stack.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appLogger.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.Compress(5, "application/json"))
	r.Use(appMiddleware.CORS(cfg.AllowedOrigins))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Group(func(r chi.Router) {
			r.Get("/auth/{provider}/login", cfg.AuthHandler.Login)
			r.Get("/auth/{provider}/callback", cfg.AuthHandler.Callback)
			r.Post("/auth/refresh", cfg.AuthHandler.Refresh)
			r.Post("/auth/logout", cfg.AuthHandler.Logout)

			r.Get("/regions", cfg.RegionHandler.ListRegions)
			r.Get("/regions/{code}", cfg.RegionHandler.GetRegion)
		})

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/auth/provider-token/refresh", cfg.AuthHandler.RefreshProviderToken)

			r.Route("/members/me", func(r chi.Router) {
				r.Get("/", cfg.MemberHandler.GetMe)
				r.Put("/", cfg.MemberHandler.UpdateMe)
				r.Delete("/", cfg.MemberHandler.DeleteMe)
			})

			r.Route("/plans", func(r chi.Router) {
				r.Post("/", cfg.PlanHandler.CreatePlan)
				r.Get("/", cfg.PlanHandler.ListPlans)
				r.Route("/{planID}", func(r chi.Router) {
					r.Get("/", cfg.PlanHandler.GetPlan)
					r.Put("/", cfg.PlanHandler.UpdatePlan)
					r.Delete("/", cfg.PlanHandler.DeletePlan)
					r.Post("/spots", cfg.PlanHandler.AttachSpot)
					r.Delete("/spots/{planSpotID}", cfg.PlanHandler.DetachSpot)
					r.Post("/spots/{planSpotID}/tags", cfg.PlanHandler.TagPlanSpot)
					r.Get("/checklist", cfg.ChecklistHandler.GetChecklist)
					r.Put("/checklist", cfg.ChecklistHandler.SaveChecklist)
					r.Delete("/checklist", cfg.ChecklistHandler.DeleteChecklist)
				})
			})

			r.Route("/spots", func(r chi.Router) {
				r.Post("/", cfg.SpotHandler.CreateSpot)
				r.Get("/", cfg.SpotHandler.ListSpots)
				r.Get("/{spotID}", cfg.SpotHandler.GetSpot)
				r.Put("/{spotID}", cfg.SpotHandler.UpdateSpot)
				r.Delete("/{spotID}", cfg.SpotHandler.DeleteSpot)
			})
			r.Get("/spot-tags", cfg.SpotHandler.ListTags)

			r.Route("/recommendations", func(r chi.Router) {
				r.Use(appMiddleware.RateLimitByIP(cfg.RecommendRateLimit))
				r.Post("/schedule", cfg.RecommendHandler.Schedule)
				r.Post("/{kind}", cfg.RecommendHandler.Recommend)
			})
		})
	})

	return r
}
