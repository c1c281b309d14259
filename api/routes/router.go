package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/prices-backend/api/controllers"
	"github.com/angelmondragon/prices-backend/api/middleware"
	"github.com/angelmondragon/prices-backend/internal/prices"
	"github.com/angelmondragon/prices-backend/pkg/auth"
	"github.com/angelmondragon/prices-backend/pkg/config"
	"github.com/angelmondragon/prices-backend/pkg/logger"
	"github.com/angelmondragon/prices-backend/pkg/metrics"
)

// Deps carries everything the router mounts. Nil optional fields disable their feature.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Prices      prices.Service
	Admin       prices.AdminService
	Readiness   []controllers.ReadinessCheck
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	RateLimiter *middleware.RateLimiter
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	loc, err := cfg.App.Location()
	if err != nil {
		loc = time.UTC
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	r.NotFound(controllers.NotFound(logg))
	r.MethodNotAllowed(controllers.MethodNotAllowed())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness...))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.RateLimiter.Handler)
		r.Get("/prices", controllers.ApplicablePrice(deps.Prices, loc, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(deps.RateLimiter.Handler)
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(auth.RoleAdmin, logg))

		r.Get("/ping", controllers.AdminPing())
		r.Route("/prices", func(r chi.Router) {
			r.Get("/", controllers.AdminListPrices(deps.Admin, logg))
			r.Post("/", controllers.AdminIngestPrices(deps.Admin, logg))
			r.Delete("/{priceId}", controllers.AdminDeletePrice(deps.Admin, logg))
		})
	})

	return r
}
