package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"novara/internal/handler"
	"novara/internal/httputil"
	authmw "novara/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler      *handler.AuthHandler
	BookHandler      *handler.BookHandler
	BlogHandler      *handler.BlogHandler
	UserHandler      *handler.UserHandler
	OrderHandler     *handler.OrderHandler
	DashboardHandler *handler.DashboardHandler
	MediaHandler     *handler.MediaHandler
	Sessions         authmw.SessionResolver
	Logger           zerolog.Logger

	// Metrics and MetricsHandler are nil when metrics are disabled.
	Metrics        *authmw.Metrics
	MetricsHandler http.Handler
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(authmw.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Handler)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	requireAuth := authmw.AuthMiddleware(cfg.Sessions)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.With(authmw.OptionalAuthMiddleware(cfg.Sessions)).Post("/logout", cfg.AuthHandler.Logout)
			r.With(requireAuth).Get("/me", cfg.AuthHandler.Me)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", cfg.BookHandler.List)
			r.Get("/{id}", cfg.BookHandler.GetByID)
			r.With(requireAuth).Post("/", cfg.BookHandler.Create)
			r.With(requireAuth).Put("/{id}", cfg.BookHandler.Update)
			r.With(requireAuth).Delete("/{id}", cfg.BookHandler.Delete)
		})

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", cfg.BlogHandler.List)
			r.Get("/{id}", cfg.BlogHandler.GetByID)
			r.With(requireAuth).Post("/", cfg.BlogHandler.Create)
			r.With(requireAuth).Put("/{id}", cfg.BlogHandler.Update)
			r.With(requireAuth).Delete("/{id}", cfg.BlogHandler.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}", cfg.UserHandler.GetProfile)
			r.With(requireAuth).Patch("/me", cfg.UserHandler.UpdateMe)
		})

		// Protected routes - require authentication
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/books", cfg.DashboardHandler.Books)
				r.Get("/blogs", cfg.DashboardHandler.Blogs)
				r.Get("/orders", cfg.DashboardHandler.Orders)
				r.Get("/sales", cfg.DashboardHandler.Sales)
				r.Get("/activity", cfg.DashboardHandler.Activity)
			})

			r.Post("/orders", cfg.OrderHandler.Create)
			r.Patch("/orders/{id}/status", cfg.OrderHandler.UpdateStatus)

			r.Post("/media/images", cfg.MediaHandler.UploadImage)
		})
	})

	return r
}
