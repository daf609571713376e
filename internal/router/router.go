// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Explora server. Routes are organized into public, auth, and admin
// groups with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"exploracms/internal/handlers"
	"exploracms/internal/middleware"
	"exploracms/internal/session"
)

// Config carries everything the router needs to wire up.
type Config struct {
	Sessions  *session.Store
	Public    *handlers.Public
	Auth      *handlers.Auth
	Admin     *handlers.Admin
	UploadDir string // served read-only under /uploads/
	Secure    bool   // Secure flag on the CSRF cookie
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(cfg Config) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(cfg.Sessions))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Uploaded destination images.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.UploadDir))))

	csrf := middleware.NewCSRF(cfg.Secure)

	// Public pages. The comment form carries a CSRF token, so the whole
	// group runs behind the middleware.
	r.Group(func(r chi.Router) {
		r.Use(csrf)

		r.Get("/", cfg.Public.Home)
		r.Get("/destinations", cfg.Public.Destinations)
		r.Get("/categories", cfg.Public.Categories)
		r.Get("/destinations/{slug}", cfg.Public.DestinationDetail)
		r.Post("/destinations/{slug}/comments", cfg.Public.SubmitComment)
		r.Get("/destinations/{slug}/qr.png", cfg.Public.QRCode)

		// Auth pages — accessible without a session.
		r.Get("/login", cfg.Auth.LoginPage)
		r.Post("/login", cfg.Auth.LoginSubmit)
		r.Get("/register", cfg.Auth.RegisterPage)
		r.Post("/register", cfg.Auth.RegisterSubmit)
		r.Post("/logout", cfg.Auth.Logout)
	})

	// Admin area — authenticated, CSRF-protected.
	r.Route("/admin", func(r chi.Router) {
		r.Use(csrf)
		r.Use(middleware.RequireAuth)

		r.Get("/", cfg.Admin.Dashboard)

		// Destinations
		r.Route("/destinations", func(r chi.Router) {
			r.Get("/", cfg.Admin.DestinationsList)
			r.Get("/new", cfg.Admin.DestinationNewForm)
			r.Post("/", cfg.Admin.DestinationCreate)
			r.Get("/{id}/edit", cfg.Admin.DestinationEditForm)
			r.Post("/{id}/update", cfg.Admin.DestinationUpdate)
			r.Post("/{id}/delete", cfg.Admin.DestinationDelete)
		})

		// Categories
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", cfg.Admin.CategoriesList)
			r.Post("/", cfg.Admin.CategoryCreate)
			r.Post("/{id}/update", cfg.Admin.CategoryUpdate)
			r.Post("/{id}/delete", cfg.Admin.CategoryDelete)
		})

		// Comment moderation. All mutations arrive on one endpoint and are
		// dispatched on the action form field.
		r.Route("/comments", func(r chi.Router) {
			r.Get("/", cfg.Admin.CommentsList)
			r.Post("/", cfg.Admin.CommentsAction)
		})

		// User management — admin only.
		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", cfg.Admin.UsersList)
			r.Get("/new", cfg.Admin.UserNewForm)
			r.Post("/", cfg.Admin.UserCreate)
			r.Get("/{id}/edit", cfg.Admin.UserEditForm)
			r.Post("/{id}/update", cfg.Admin.UserUpdate)
			r.Post("/{id}/delete", cfg.Admin.UserDelete)
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
