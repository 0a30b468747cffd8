// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// policy portal. It organizes routes into public, page and JSON API groups
// with appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"policyportal/internal/handlers"
	"policyportal/internal/middleware"
)

// Handlers bundles the handler groups served by the router.
type Handlers struct {
	Auth     *handlers.Auth
	Pages    *handlers.Pages
	Transfer *handlers.Transfer
	API      *handlers.API
}

// Limits holds the rate limiters of the expensive endpoints. Nil limiters
// disable limiting.
type Limits struct {
	Login *middleware.RateLimiter
	Draft *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. static is served under /static/.
func New(sessions middleware.SessionGetter, h Handlers, limits Limits, static fs.FS, secureCookies bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(secureCookies))

	// Health check and static assets: no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(sessions))
		r.Use(middleware.NewCSRF(secureCookies))

		// Auth pages, accessible without a session.
		r.Get("/login", h.Auth.LoginPage)
		r.With(limit(limits.Login)).Post("/login", h.Auth.LoginSubmit)
		r.Post("/logout", h.Auth.Logout)

		// Portal pages.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/", h.Pages.Index)

			r.Route("/policies", func(r chi.Router) {
				r.Post("/", h.Pages.NewPolicy)
				r.Post("/preview", h.Pages.Preview)
				r.With(limit(limits.Draft)).Post("/generate", h.Pages.GeneratePolicy)
				r.Get("/{id}", h.Pages.ViewPolicy)
				r.Post("/{id}", h.Pages.SavePolicy)
				r.Get("/{id}/edit", h.Pages.EditPolicy)
				r.Post("/{id}/delete", h.Pages.DeletePolicy)
				r.Get("/{id}/export", h.Transfer.ExportPolicy)
			})

			r.Post("/categories", h.Pages.AddCategory)
			r.Post("/categories/{id}/delete", h.Pages.DeleteCategory)

			r.Get("/export", h.Transfer.ExportAll)
			r.Post("/export/archive", h.Transfer.Archive)
			r.Get("/export/archive/download", h.Transfer.ArchiveDownload)
			r.Post("/import", h.Transfer.Import)
			r.Post("/sync", h.Transfer.Sync)
		})

		// JSON API.
		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.RequireAuthAPI)

			r.Route("/policies", func(r chi.Router) {
				r.Get("/", h.API.ListPolicies)
				r.Post("/", h.API.CreatePolicy)
				r.Get("/{id}", h.API.GetPolicy)
				r.Patch("/{id}", h.API.PatchPolicy)
				r.Delete("/{id}", h.API.DeletePolicy)
				r.Get("/{id}/toc", h.API.TableOfContents)
			})
			r.Post("/render", h.API.Render)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.API.ListCategories)
				r.Post("/", h.API.CreateCategory)
				r.Delete("/{id}", h.API.DeleteCategory)
			})
		})
	})

	return r
}

// limit wraps a route with rl, or passes through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
