// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// BlogPress server. It organizes routes into public and admin groups
// with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"blogpress/internal/handlers"
	"blogpress/internal/middleware"
	"blogpress/internal/session"
	"blogpress/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Embedded static assets.
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.StaticSub()))))

	// Admin routes — require authentication and CSRF protection.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF)

		// Auth pages — accessible without a session.
		r.Get("/login", auth.LoginPage)
		r.Post("/login", auth.LoginSubmit)
		r.Post("/logout", auth.Logout)

		// 2FA — requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", auth.TwoFASetupPage)
			r.Get("/2fa/verify", auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", auth.TwoFAVerifySubmit)
		})

		// Authenticated + 2FA-verified admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			// Dashboard
			r.Get("/", admin.Dashboard)
			r.Get("/dashboard", admin.Dashboard)

			// Posts
			r.Route("/posts", func(r chi.Router) {
				r.Get("/", admin.PostsList)
				r.Get("/new", admin.PostNew)
				r.Post("/", admin.PostCreate)
				r.Get("/{id}", admin.PostEdit)
				r.Post("/{id}", admin.PostUpdate)
				r.Post("/{id}/delete", admin.PostDelete)
			})

			// Categories — taxonomy changes are admin-only.
			r.Route("/categories", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", admin.CategoriesList)
				r.Get("/new", admin.CategoryNew)
				r.Post("/", admin.CategoryCreate)
				r.Get("/{id}", admin.CategoryEdit)
				r.Post("/{id}", admin.CategoryUpdate)
				r.Post("/{id}/delete", admin.CategoryDelete)
			})

			// Comment moderation — admin-only.
			r.Route("/comments", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", admin.CommentsList)
				r.Post("/approve", admin.CommentsApprove)
			})
		})
	})

	// Public routes — server-rendered blog pages.
	r.Get("/", public.Home)
	r.Get("/about", public.About)
	r.Get("/search", public.Search)
	r.Get("/sitemap.xml", public.Sitemap)
	r.Get("/robots.txt", public.Robots)
	r.Get("/category/{slug}", public.Category)
	r.Get("/post/{slug}", public.PostDetail)

	// Comment submission is the only anonymous write path, so it gets a
	// per-IP rate limit on top of the global stack.
	commentLimiter := middleware.NewRateLimiter(5, time.Minute)
	r.With(commentLimiter.Middleware).Post("/post/{slug}", public.CommentSubmit)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
