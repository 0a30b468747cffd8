// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the policy portal.
// Handlers are grouped by concern (auth, portal pages, JSON API) and receive
// their dependencies through the handler struct.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"policyportal/internal/models"
	"policyportal/internal/render"
	"policyportal/internal/session"
	"policyportal/internal/storage"
	"policyportal/internal/transfer"
)

// Sessions is the part of session.Store the handlers use.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	SetFlash(ctx context.Context, r *http.Request, msg string) error
	PopFlash(ctx context.Context, r *http.Request) string
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Authenticator checks sign-in credentials.
type Authenticator interface {
	Check(username, password string) bool
}

// Drafter writes a policy body from a policy name.
type Drafter interface {
	Draft(ctx context.Context, name string) (string, error)
}

// SyncRunner is the part of transfer.Syncer the handlers use.
type SyncRunner interface {
	State() transfer.SyncState
	Sync(ctx context.Context, rawURL string) (transfer.Result, error)
	Disconnect() error
}

// ArchiveStore keeps exports in object storage.
type ArchiveStore interface {
	Archive(ctx context.Context, policies []models.Policy) (string, error)
	Archives(ctx context.Context) ([]storage.Object, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

// Flash kinds are stored as a prefix of the session flash text.
const (
	flashSuccess = "success"
	flashError   = "error"
)

func setFlash(ctx context.Context, sessions Sessions, r *http.Request, kind, msg string) {
	if err := sessions.SetFlash(ctx, r, kind+":"+msg); err != nil {
		slog.Warn("set flash failed", "error", err)
	}
}

func popFlashes(ctx context.Context, sessions Sessions, r *http.Request) []render.Flash {
	raw := sessions.PopFlash(ctx, r)
	if raw == "" {
		return nil
	}
	kind, msg, ok := strings.Cut(raw, ":")
	if !ok || (kind != flashSuccess && kind != flashError) {
		return []render.Flash{{Type: "info", Message: raw}}
	}
	return []render.Flash{{Type: kind, Message: msg}}
}

// redirect sends the browser to target. HTMX requests get HX-Redirect so
// the whole page navigates instead of swapping a fragment.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// policyID parses the {id} URL parameter.
func policyID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func policyURL(id int64) string {
	return "/policies/" + strconv.FormatInt(id, 10)
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode json response failed", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// attachment sends data as a JSON file download.
func attachment(w http.ResponseWriter, fileName string, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.Write(data)
}
