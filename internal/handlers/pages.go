// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"policyportal/internal/ai"
	"policyportal/internal/models"
	"policyportal/internal/portal"
	"policyportal/internal/render"
	"policyportal/internal/store"
)

// Pages groups the server-rendered portal handlers and their dependencies.
type Pages struct {
	renderer *render.Renderer
	sessions Sessions
	service  *portal.Service
	writer   Drafter
	transfer *Transfer
}

// NewPages creates the page handler group. writer may be nil when no AI
// provider is configured.
func NewPages(renderer *render.Renderer, sessions Sessions, service *portal.Service, writer Drafter, transfer *Transfer) *Pages {
	return &Pages{
		renderer: renderer,
		sessions: sessions,
		service:  service,
		writer:   writer,
		transfer: transfer,
	}
}

// page builds the data shared by every portal page: the sidebar library and
// any pending flash.
func (p *Pages) page(r *http.Request, title string, active int64, data map[string]any) *render.PageData {
	library, err := p.service.Library(r.Context())
	if err != nil {
		slog.Error("load library failed", "error", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return &render.PageData{
		Title:        title,
		Library:      library,
		ActivePolicy: active,
		Data:         data,
		Flashes:      popFlashes(r.Context(), p.sessions, r),
	}
}

func (p *Pages) flash(r *http.Request, kind, msg string) {
	setFlash(r.Context(), p.sessions, r, kind, msg)
}

// Index renders the portal home: tools for creating, importing and syncing.
func (p *Pages) Index(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"AIEnabled":      p.writer != nil,
		"Sync":           p.transfer.syncer.State(),
		"StorageEnabled": p.transfer.archiver != nil,
	}
	if p.transfer.archiver != nil {
		archives, err := p.transfer.archiver.Archives(r.Context())
		if err != nil {
			slog.Error("list archives failed", "error", err)
		}
		data["Archives"] = archives
	}

	p.renderer.Page(w, r, "index", p.page(r, "Policies", 0, data))
}

// ViewPolicy renders a policy with its table of contents.
func (p *Pages) ViewPolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := policyID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	doc, err := p.service.Document(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("load policy failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.renderer.Page(w, r, "policy", p.page(r, doc.Policy.Name, id, map[string]any{"Document": doc}))
}

// EditPolicy renders the editor with a live preview.
func (p *Pages) EditPolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := policyID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	policy, err := p.service.Policy(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("load policy failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.renderEditor(w, r, http.StatusOK, policy, nil)
}

func (p *Pages) renderEditor(w http.ResponseWriter, r *http.Request, status int, policy *models.Policy, flashes []render.Flash) {
	categories, err := p.service.Categories(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}

	data := p.page(r, "Edit "+policy.Name, policy.ID, map[string]any{
		"Policy":     policy,
		"Categories": categories,
		"Preview":    p.service.Preview(r.Context(), policy.Content),
	})
	data.Flashes = append(data.Flashes, flashes...)
	p.renderer.PageStatus(w, r, "policy_edit", status, data)
}

// SavePolicy handles the editor form submission.
func (p *Pages) SavePolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := policyID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	form := policyForm{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Content:  r.FormValue("content"),
		Category: r.FormValue("category"),
	}
	if err := form.Validate(); err != nil {
		draft := &models.Policy{ID: id, Name: form.Name, Content: form.Content}
		if form.Category != "" {
			draft.CategoryID = &form.Category
		}
		p.renderEditor(w, r, http.StatusUnprocessableEntity, draft, []render.Flash{
			{Type: flashError, Message: formMessage(err, "name", "content")},
		})
		return
	}

	patch := models.PolicyPatch{Name: &form.Name, Content: &form.Content}
	if form.Category != "" {
		patch.CategoryID = &form.Category
	}

	if _, err := p.service.UpdatePolicy(r.Context(), id, patch); err != nil {
		slog.Error("update policy failed", "id", id, "error", err)
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		p.flash(r, flashError, "Failed to save changes. "+portal.UserMessage(err))
		redirect(w, r, policyURL(id)+"/edit")
		return
	}

	slog.Info("policy saved", "id", id)
	p.flash(r, flashSuccess, "Policy saved.")
	redirect(w, r, policyURL(id))
}

// NewPolicy creates a blank policy in the submitted category and opens it
// in the editor.
func (p *Pages) NewPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := p.service.NewBlankPolicy(r.Context(), r.FormValue("category"))
	if err != nil {
		slog.Error("create policy failed", "error", err)
		p.flash(r, flashError, "Failed to create policy.")
		redirect(w, r, "/")
		return
	}

	redirect(w, r, policyURL(policy.ID)+"/edit")
}

// GeneratePolicy creates a named policy. With mode=ai the body is drafted by
// the AI provider; otherwise it starts as a single title heading.
func (p *Pages) GeneratePolicy(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	if err := (policyForm{Name: name}).Validate(); err != nil {
		p.flash(r, flashError, formMessage(err, "name"))
		redirect(w, r, "/")
		return
	}

	var (
		policy *models.Policy
		err    error
	)
	if r.FormValue("mode") == "ai" {
		if p.writer == nil {
			p.flash(r, flashError, ai.MsgNotConfigured)
			redirect(w, r, "/")
			return
		}
		content, draftErr := p.writer.Draft(r.Context(), name)
		if draftErr != nil {
			p.flash(r, flashError, ai.UserMessage(draftErr))
			redirect(w, r, "/")
			return
		}
		policy, err = p.service.CreatePolicy(r.Context(), name, content, models.GeneralCategoryID)
	} else {
		policy, err = p.service.CreateNamedPolicy(r.Context(), name)
	}
	if err != nil {
		slog.Error("create policy failed", "name", name, "error", err)
		p.flash(r, flashError, "Failed to create policy.")
		redirect(w, r, "/")
		return
	}

	redirect(w, r, policyURL(policy.ID))
}

// DeletePolicy removes a policy.
func (p *Pages) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := policyID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := p.service.DeletePolicy(r.Context(), id); err != nil {
		slog.Error("delete policy failed", "id", id, "error", err)
		p.flash(r, flashError, "Failed to delete policy.")
		redirect(w, r, policyURL(id))
		return
	}

	p.flash(r, flashSuccess, "Policy deleted.")
	redirect(w, r, "/")
}

// Preview renders editor text for the live preview pane.
func (p *Pages) Preview(w http.ResponseWriter, r *http.Request) {
	content := r.FormValue("content")
	if len(content) > maxContentLen {
		http.Error(w, "Policy content is too long.", http.StatusRequestEntityTooLarge)
		return
	}

	p.renderer.Partial(w, r, "policy_edit", "preview", &render.PageData{
		Data: map[string]any{"Preview": p.service.Preview(r.Context(), content)},
	})
}

// AddCategory handles the add-category form.
func (p *Pages) AddCategory(w http.ResponseWriter, r *http.Request) {
	form := categoryForm{
		Name: strings.TrimSpace(r.FormValue("name")),
		Icon: r.FormValue("icon"),
	}
	if err := form.Validate(); err != nil {
		p.flash(r, flashError, formMessage(err, "name", "icon"))
		redirect(w, r, "/")
		return
	}

	category, err := p.service.AddCategory(r.Context(), form.Name, form.Icon)
	if err != nil {
		slog.Error("create category failed", "name", form.Name, "error", err)
		p.flash(r, flashError, "Failed to create folder: "+portal.UserMessage(err))
		redirect(w, r, "/")
		return
	}

	p.flash(r, flashSuccess, "Category "+category.Name+" created.")
	redirect(w, r, "/")
}

// DeleteCategory removes an empty category.
func (p *Pages) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := p.service.DeleteCategory(r.Context(), id); err != nil {
		slog.Warn("delete category refused", "id", id, "error", err)
		p.flash(r, flashError, portal.UserMessage(err))
		redirect(w, r, "/")
		return
	}

	p.flash(r, flashSuccess, "Category deleted.")
	redirect(w, r, "/")
}
