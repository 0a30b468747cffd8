// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"policyportal/internal/models"
	"policyportal/internal/portal"
	"policyportal/internal/store"
)

// maxAPIBody caps JSON request bodies.
const maxAPIBody = 1 << 20

// API groups the JSON API handlers.
type API struct {
	service *portal.Service
}

// NewAPI creates the JSON API handler group.
func NewAPI(service *portal.Service) *API {
	return &API{service: service}
}

// decodeBody reads a JSON request body into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAPIBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON body.")
		return false
	}
	return true
}

// serviceError maps a portal error to a JSON error response.
func serviceError(w http.ResponseWriter, err error) {
	var inUse *store.CategoryInUseError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &inUse), errors.Is(err, store.ErrProtectedCategory), errors.Is(err, store.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, portal.ErrNameRequired), errors.Is(err, portal.ErrUnknownCategory):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		slog.Error("api request failed", "error", err)
	}
	writeJSONError(w, status, portal.UserMessage(err))
}

// ListPolicies returns all policies, optionally filtered by ?category=.
func (a *API) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := a.service.Policies(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}

	if category := r.URL.Query().Get("category"); category != "" {
		filtered := make([]models.Policy, 0, len(policies))
		for _, p := range policies {
			if p.InCategory(category) {
				filtered = append(filtered, p)
			}
		}
		policies = filtered
	}
	if policies == nil {
		policies = []models.Policy{}
	}

	writeJSON(w, http.StatusOK, policies)
}

type createPolicyRequest struct {
	Name       string `json:"name"`
	Content    string `json:"content"`
	CategoryID string `json:"category_id"`
}

// CreatePolicy creates a policy from a JSON body.
func (a *API) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req createPolicyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	form := policyForm{Name: strings.TrimSpace(req.Name), Content: req.Content}
	if err := form.Validate(); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, formMessage(err, "name", "content"))
		return
	}

	policy, err := a.service.CreatePolicy(r.Context(), form.Name, form.Content, req.CategoryID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, policy)
}

// GetPolicy returns a policy with its rendered body and headings.
func (a *API) GetPolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := policyID(r)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Policy not found.")
		return
	}

	doc, err := a.service.Document(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// PatchPolicy applies a partial update and returns the full policy.
func (a *API) PatchPolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := policyID(r)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Policy not found.")
		return
	}

	var patch models.PolicyPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if patch.Content != nil && len(*patch.Content) > maxContentLen {
		writeJSONError(w, http.StatusUnprocessableEntity, "Policy content is too long (max 500,000 characters).")
		return
	}

	policy, err := a.service.UpdatePolicy(r.Context(), id, patch)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, policy)
}

// DeletePolicy removes a policy.
func (a *API) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := policyID(r)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Policy not found.")
		return
	}

	if err := a.service.DeletePolicy(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TableOfContents returns the heading list of a stored policy.
func (a *API) TableOfContents(w http.ResponseWriter, r *http.Request) {
	id, ok := policyID(r)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Policy not found.")
		return
	}

	headings, err := a.service.TableOfContents(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"headings": headings})
}

type renderRequest struct {
	Content string `json:"content"`
}

// Render annotates arbitrary Markdown and returns its HTML and headings.
func (a *API) Render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, a.service.Preview(r.Context(), req.Content))
}

// ListCategories returns all categories with policy counts.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.service.Categories(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}

	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory creates a category from a JSON body.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var form categoryForm
	if !decodeBody(w, r, &form) {
		return
	}
	form.Name = strings.TrimSpace(form.Name)
	if err := form.Validate(); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, formMessage(err, "name", "icon"))
		return
	}

	category, err := a.service.AddCategory(r.Context(), form.Name, form.Icon)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

// DeleteCategory removes an empty category.
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
