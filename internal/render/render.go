// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the policy portal.
// It supports full-page and HTMX partial rendering, automatically detecting
// the request type via the HX-Request header.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"policyportal/internal/middleware"
	"policyportal/internal/portal"
	"policyportal/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds all data passed to page templates.
type PageData struct {
	Title        string         // Page title for <title> tag
	Session      *session.Data  // Current session (nil if unauthenticated)
	CSRFToken    string         // CSRF token for forms and HTMX headers
	Library      []portal.Group // Sidebar: categories with their policies
	ActivePolicy int64          // Policy highlighted in the sidebar
	Data         map[string]any // Page-specific data
	Flashes      []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error", "info"
	Message string
}

// Renderer handles template parsing and execution for portal pages.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// standaloneTemplates lists templates that render as full HTML pages
// without the base layout (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"login": true,
}

// categoryIcons maps category icon tags to SVG path data.
var categoryIcons = map[string]string{
	"Folder": "M3 7a2 2 0 012-2h4l2 2h8a2 2 0 012 2v8a2 2 0 01-2 2H5a2 2 0 01-2-2V7z",
	"Shield": "M12 3l8 4v5c0 5-3.5 8.5-8 9-4.5-.5-8-4-8-9V7l8-4z",
	"Lock":   "M6 11V8a6 6 0 1112 0v3M5 11h14v10H5z",
	"Users":  "M17 20h5v-2a3 3 0 00-5.36-1.86M9 20H2v-2a3 3 0 015.36-1.86M15 7a3 3 0 11-6 0 3 3 0 016 0z",
	"Server": "M4 5h16v6H4zM4 13h16v6H4zM8 8h.01M8 16h.01",
}

// New creates a Renderer by parsing all page templates from the embedded
// filesystem. Each page template is paired with the base layout. devMode
// shows a development badge in the header.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			// isDev returns true when the app runs in development mode.
			"isDev": func() bool {
				return devMode
			},
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			// policyClass highlights the sidebar entry of the open policy.
			"policyClass": func(active, id int64) string {
				if active == id {
					return "bg-indigo-50 text-indigo-700 font-semibold"
				}
				return "text-slate-600 hover:bg-slate-100"
			},
			// trustedHTML marks annotator output as safe to embed. The
			// annotator escapes what it generates; author HTML inside policy
			// text passes through unless the sanitizer is enabled.
			"trustedHTML": func(s string) template.HTML {
				return template.HTML(s)
			},
			// tocIndent indents level-3 entries under their level-2 parent.
			"tocIndent": func(level int) string {
				if level >= 3 {
					return "pl-4 text-xs"
				}
				return "text-sm"
			},
			// iconPath returns the SVG path for a category icon tag.
			"iconPath": func(tag string) string {
				if p, ok := categoryIcons[tag]; ok {
					return p
				}
				return categoryIcons["Folder"]
			},
			"iconTags": func() []string {
				return []string{"Folder", "Shield", "Lock", "Users", "Server"}
			},
		},
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		var parseErr error
		if standaloneTemplates[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(
				templateFS, "templates/"+name,
			)
		} else {
			tmpl, parseErr = template.New("base.html").Funcs(r.funcMap).ParseFS(
				templateFS, "templates/base.html", "templates/"+name,
			)
		}
		if parseErr != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
		}

		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders a full page or an HTMX partial, depending on the request
// headers. For HTMX requests, only the "content" block is sent.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, name, http.StatusOK, data)
}

// PageStatus is Page with an explicit response status, used to re-render a
// form with validation errors.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, name string, status int, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}
	if isHTMX(r) && !standaloneTemplates[name] {
		execName = "content"
	}

	rn.execute(w, tmpl, execName, status, data)
}

// Partial renders one named block of a page template. Used for HTMX
// fragments such as the live preview.
func (rn *Renderer) Partial(w http.ResponseWriter, r *http.Request, page, block string, data *PageData) {
	tmpl, ok := rn.templates[page]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", page), http.StatusInternalServerError)
		return
	}
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	rn.execute(w, tmpl, block, http.StatusOK, data)
}

// execute renders into a buffer first so a template error never leaves a
// half-written page behind.
func (rn *Renderer) execute(w http.ResponseWriter, tmpl *template.Template, name string, status int, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
