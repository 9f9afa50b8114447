package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"reelgram/internal/handler"
	"reelgram/internal/transport/http/middleware"
)

// RouterConfig bundles the dependencies the router wires up.
type RouterConfig struct {
	AuthHandler *handler.AuthHandler
	PostHandler *handler.PostHandler
	Verifier    middleware.TokenVerifier
	Redis       *redis.Client

	RateLimit  int
	RateWindow time.Duration

	// UploadDir is served under /uploads/ when media lives on local disk.
	// Empty when an object store backend handles delivery.
	UploadDir string
}

// NewRouter builds the chi router with all API routes.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.Redis, "auth", cfg.RateLimit, cfg.RateWindow))
			r.Post("/signup", cfg.AuthHandler.Signup)
			r.Post("/login", cfg.AuthHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.Verifier))
			r.Put("/profile", cfg.AuthHandler.UpdateProfile)
			r.Post("/logout", cfg.AuthHandler.Logout)
		})
	})

	r.Route("/api/posts", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Verifier))
		r.Post("/", cfg.PostHandler.Create)
		r.Get("/", cfg.PostHandler.List)
		r.Get("/user/{userId}", cfg.PostHandler.ListByUser)
		r.Post("/{id}/like", cfg.PostHandler.ToggleLike)
		r.Post("/{id}/comments", cfg.PostHandler.AddComment)
	})

	if cfg.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
		r.Handle("/uploads/*", fs)
	}

	return r
}
