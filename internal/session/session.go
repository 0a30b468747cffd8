// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session provides Valkey-backed HTTP session management for the
// portal login. Sessions are identified by a secure cookie and stored as
// JSON in Valkey with automatic TTL expiry.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "pp_session"

	// DefaultTTL is how long a session lives in Valkey before automatic expiry.
	DefaultTTL = 24 * time.Hour

	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "session:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// Data holds the session payload stored in Valkey.
type Data struct {
	// LoginID identifies one login across log lines without exposing the
	// session cookie value.
	LoginID   uuid.UUID `json:"login_id"`
	Username  string    `json:"username"`
	Flash     string    `json:"flash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages session lifecycle in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a session store backed by the given Valkey client.
// secure sets the Secure flag on the session cookie.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{
		client: client,
		ttl:    DefaultTTL,
		secure: secure,
	}
}

// Create starts a session for data, stores it and sets the session
// cookie. A missing LoginID is assigned. Returns the session ID.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	if data.LoginID == uuid.Nil {
		data.LoginID = uuid.New()
	}
	data.CreatedAt = time.Now()

	if err := s.save(ctx, id, data); err != nil {
		return "", err
	}
	s.setCookie(w, id, int(s.ttl.Seconds()))
	return id, nil
}

// Get loads the session named by the request cookie. A request without
// a cookie, or whose session has expired, yields nil and no error.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	id, ok := cookieID(r)
	if !ok {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	return &data, nil
}

// Update replaces the stored session data and resets its TTL. The
// session ID and cookie are unchanged.
func (s *Store) Update(ctx context.Context, r *http.Request, data *Data) error {
	id, ok := cookieID(r)
	if !ok {
		return errors.New("session update: no cookie")
	}
	return s.save(ctx, id, data)
}

// SetFlash stores a one-shot message shown on the next page render.
func (s *Store) SetFlash(ctx context.Context, r *http.Request, msg string) error {
	data, err := s.Get(ctx, r)
	if err != nil || data == nil {
		return err
	}
	data.Flash = msg
	return s.Update(ctx, r, data)
}

// PopFlash returns and clears the pending flash message.
func (s *Store) PopFlash(ctx context.Context, r *http.Request) string {
	data, err := s.Get(ctx, r)
	if err != nil || data == nil || data.Flash == "" {
		return ""
	}
	msg := data.Flash
	data.Flash = ""
	if err := s.Update(ctx, r, data); err != nil {
		return ""
	}
	return msg
}

// Destroy removes the session from Valkey and expires the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, ok := cookieID(r)
	if !ok {
		return nil
	}
	s.setCookie(w, "", -1)
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, id string, data *Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}

func (s *Store) setCookie(w http.ResponseWriter, id string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// cookieID returns the session ID carried by the request, if any.
func cookieID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
