// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"policyportal/internal/middleware"
	"policyportal/internal/render"
	"policyportal/internal/session"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer    *render.Renderer
	sessions    Sessions
	credentials Authenticator
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions Sessions, credentials Authenticator) *Auth {
	return &Auth{
		renderer:    renderer,
		sessions:    sessions,
		credentials: credentials,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Sign in",
		Data:  map[string]any{"Username": ""},
	})
}

// LoginSubmit processes the login form.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	form := loginForm{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}

	fail := func(msg string) {
		a.renderer.PageStatus(w, r, "login", http.StatusUnauthorized, &render.PageData{
			Title:   "Sign in",
			Data:    map[string]any{"Username": form.Username},
			Flashes: []render.Flash{{Type: flashError, Message: msg}},
		})
	}

	if err := form.Validate(); err != nil {
		fail(formMessage(err, "username", "password"))
		return
	}
	if !a.credentials.Check(form.Username, form.Password) {
		slog.Warn("login rejected", "username", form.Username)
		fail("Invalid username or password.")
		return
	}

	data := &session.Data{Username: form.Username}
	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("login", "username", data.Username, "login_id", data.LoginID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session and redirects to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
