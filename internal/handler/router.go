package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ritesshguptaa/recipy-app-api/internal/metrics"
	"github.com/ritesshguptaa/recipy-app-api/internal/middleware"
)

// CollectionHandler serves list and create on one owner-scoped collection.
type CollectionHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
}

// RouterConfig wires handlers and middleware into the API router.
type RouterConfig struct {
	Logger *slog.Logger

	Users       *UserHandler
	Tags        CollectionHandler
	Ingredients CollectionHandler
	Recipes     CollectionHandler
	Health      *HealthHandler

	// MetricsHandler is mounted on /metrics when non-nil.
	MetricsHandler http.Handler
	Recorder       metrics.Recorder

	Auth        middleware.AuthConfig
	RateLimit   middleware.RateLimitConfig
	Security    middleware.SecurityConfig
	CORS        middleware.CORSConfig
	MaxBodySize int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Metrics(recorder))
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
	}

	// Probes (no auth required)
	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health.Healthz)
		r.Get("/readyz", cfg.Health.Readyz)
	}
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/user", func(r chi.Router) {
		// Anonymous account endpoints, limited per client IP
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitIP(cfg.RateLimit))
			r.Post("/create", cfg.Users.Create)
			r.Post("/token", cfg.Users.Token)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Auth))
			r.Use(middleware.RateLimitAPI(cfg.RateLimit))
			r.Get("/me", cfg.Users.Me)
			r.Patch("/me", cfg.Users.UpdateMe)
		})
	})

	// Middleware lives on groups, not on the subrouters, so an unsupported
	// method answers 405 before authentication runs.
	r.Route("/recipe", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Auth))
			r.Use(middleware.RateLimitAPI(cfg.RateLimit))

			mountCollection(r, "/tags", cfg.Tags)
			mountCollection(r, "/ingredients", cfg.Ingredients)
			mountCollection(r, "/recipes", cfg.Recipes)
		})
	})

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	return r
}

func mountCollection(r chi.Router, path string, h CollectionHandler) {
	r.Get(path, h.List)
	r.Get(path+"/", h.List)
	r.Post(path, h.Create)
	r.Post(path+"/", h.Create)
}
