package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"policyportal/internal/session"
)

func TestLoginPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/login", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), `action="/login"`) {
		t.Error("login page should contain the login form")
	}
}

func TestLoginPageRedirectsSignedInUser(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req = req.WithContext(ctxWithSession(req.Context(), &session.Data{LoginID: uuid.New(), Username: "admin"}))
	rec := env.do(req)

	assertRedirect(t, rec, "/")
}

func TestLoginSubmit(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantBody string
	}{
		{"wrong password", "admin", "nope", "Invalid username or password."},
		{"unknown user", "root", "password", "Invalid username or password."},
		{"missing username", "", "password", "Username is required."},
		{"missing password", "admin", "", "Password is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(postForm("/login", url.Values{"username": {tt.username}, "password": {tt.password}}))

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want 401", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body should contain %q", tt.wantBody)
			}
			if env.Sessions.created != nil {
				t.Error("no session should be created")
			}
		})
	}
}

func TestLoginSubmitEchoesUsername(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(postForm("/login", url.Values{"username": {"bob"}, "password": {"x"}}))

	if !strings.Contains(rec.Body.String(), `value="bob"`) {
		t.Error("failed login should keep the username in the form")
	}
}

func TestLoginSubmitSuccess(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(postForm("/login", url.Values{"username": {"admin"}, "password": {"password"}}))

	assertRedirect(t, rec, "/")
	if env.Sessions.created == nil {
		t.Fatal("session should be created")
	}
	if env.Sessions.created.Username != "admin" {
		t.Errorf("session username: got %q, want admin", env.Sessions.created.Username)
	}
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			found = true
		}
	}
	if !found {
		t.Error("session cookie should be set")
	}
}

func TestLoginSubmitSessionFailure(t *testing.T) {
	env := newTestEnv(t)
	env.Sessions.createErr = errors.New("valkey down")

	rec := env.do(postForm("/login", url.Values{"username": {"admin"}, "password": {"password"}}))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(postForm("/logout", nil))

	assertRedirect(t, rec, "/login")
	if !env.Sessions.destroyed {
		t.Error("session should be destroyed")
	}
}
