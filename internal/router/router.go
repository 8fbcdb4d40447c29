// Package router sets up all HTTP routes and middleware chains for the
// QuillPress content API. Public reads, authenticated writes and the
// admin-only account surface share one /api tree; ownership checks happen
// in the services once the target entity is loaded.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"quillpress/internal/handlers"
	"quillpress/internal/httpx"
	"quillpress/internal/metrics"
	"quillpress/internal/middleware"
)

// Deps carries everything the router wires together. Limiter, LoginLimiter
// and Uploads are optional.
type Deps struct {
	Authenticator middleware.Authenticator
	Auth          *handlers.Auth
	Posts         *handlers.Posts
	Categories    *handlers.Categories
	Users         *handlers.Users

	// Limiter throttles every /api request per client IP.
	Limiter *middleware.RateLimiter
	// LoginLimiter throttles login and registration attempts.
	LoginLimiter *middleware.RateLimiter

	// Uploads serves locally stored featured images under /uploads.
	Uploads     http.Handler
	CORSOrigins []string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	if d.Uploads != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", d.Uploads))
	}

	r.Route("/api", func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}
		r.Use(middleware.Authenticate(d.Authenticator))

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if d.LoginLimiter != nil {
					r.Use(d.LoginLimiter.Middleware)
				}
				r.Post("/register", d.Auth.Register)
				r.Post("/login", d.Auth.Login)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/logout", d.Auth.Logout)
				r.Get("/me", d.Auth.Me)
				r.Put("/me", d.Auth.UpdateMe)
				r.Post("/2fa/setup", d.Auth.SetupTOTP)
				r.Post("/2fa/verify", d.Auth.VerifyTOTP)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", d.Posts.List)
			// Registered before /{id} so "search" is never read as a slug.
			r.Get("/search", d.Posts.Search)
			// {id} also accepts a slug here.
			r.Get("/{id}", d.Posts.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", d.Posts.Create)
				r.Put("/{id}", d.Posts.Update)
				r.Delete("/{id}", d.Posts.Delete)
				r.Post("/{id}/comments", d.Posts.AddComment)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", d.Categories.List)
			r.Get("/{id}", d.Categories.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", d.Categories.Create)
				r.Put("/{id}", d.Categories.Update)
				r.Delete("/{id}", d.Categories.Delete)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", d.Users.List)
			r.Post("/", d.Users.Create)
			r.Get("/{id}", d.Users.Get)
			r.Put("/{id}", d.Users.Update)
			r.Delete("/{id}", d.Users.Delete)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httpx.WriteFailure(w, r, http.StatusNotFound, "Route not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			httpx.WriteFailure(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
