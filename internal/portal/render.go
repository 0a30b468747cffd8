// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package portal

import (
	"context"
	"fmt"

	"policyportal/internal/cache"
	"policyportal/internal/models"
	"policyportal/internal/policydoc"
)

// FragmentCache stores rendered fragments. *cache.RenderCache satisfies it.
type FragmentCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, html string)
}

// Rendered is the annotated HTML of a document with its table of contents.
// Headings[i].ID equals the id of the i-th h2/h3 element in HTML.
type Rendered struct {
	HTML     string              `json:"html"`
	Headings []policydoc.Heading `json:"headings"`
}

// Document is a stored policy with its rendered form.
type Document struct {
	Policy models.Policy `json:"policy"`
	Rendered
}

// Renderer renders policy text, optionally through a fragment cache.
type Renderer struct {
	annotator *policydoc.Annotator
	cache     FragmentCache
}

// NewRenderer creates a Renderer. fragments may be nil.
func NewRenderer(annotator *policydoc.Annotator, fragments FragmentCache) *Renderer {
	return &Renderer{annotator: annotator, cache: fragments}
}

// variant names the cache namespace: sanitizer mode plus markup version.
func (r *Renderer) variant() string {
	mode := "raw"
	if r.annotator.Sanitized() {
		mode = "sanitized"
	}
	return fmt.Sprintf("%s.v%d", mode, policydoc.MarkupVersion)
}

// Render annotates text and extracts its headings.
func (r *Renderer) Render(ctx context.Context, text string) Rendered {
	return Rendered{
		HTML:     r.html(ctx, text),
		Headings: policydoc.ExtractHeadings(text),
	}
}

func (r *Renderer) html(ctx context.Context, text string) string {
	if r.cache == nil || text == "" {
		return r.annotator.Render(text)
	}
	key := cache.Key(r.variant(), text)
	if html, ok := r.cache.Get(ctx, key); ok {
		return html
	}
	html := r.annotator.Render(text)
	r.cache.Set(ctx, key, html)
	return html
}

// Document loads a policy and renders it.
func (s *Service) Document(ctx context.Context, id int64) (*Document, error) {
	p, err := s.Policy(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Document{Policy: *p, Rendered: s.renderer.Render(ctx, p.Content)}, nil
}

// Preview renders unsaved editor text.
func (s *Service) Preview(ctx context.Context, text string) Rendered {
	return s.renderer.Render(ctx, text)
}

// TableOfContents returns the headings of a stored policy.
func (s *Service) TableOfContents(ctx context.Context, id int64) ([]policydoc.Heading, error) {
	p, err := s.Policy(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("table of contents: %w", err)
	}
	return policydoc.ExtractHeadings(p.Content), nil
}
