// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package policydoc

import (
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"policyportal/internal/markdown"
	"policyportal/internal/slug"
)

// HeadingClass is set on every rendered <h2> and <h3>.
const HeadingClass = "text-purple-700"

var (
	// renderedHeading matches a rendered h2/h3 element and its inner HTML.
	renderedHeading = regexp.MustCompile(`(?s)<h([23])(?:\s[^>]*)?>(.*?)</h[23]>`)
	// htmlTag matches any tag inside heading markup.
	htmlTag = regexp.MustCompile(`<[^>]*>`)
)

// Annotator renders policy Markdown into portal HTML. It holds no mutable
// state and is safe for concurrent use.
type Annotator struct {
	convert  markdown.Func
	sanitize func(string) string
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithSanitizer runs fn over the final HTML. See NewSanitizer.
func WithSanitizer(fn func(string) string) Option {
	return func(a *Annotator) {
		a.sanitize = fn
	}
}

// NewAnnotator creates an Annotator that uses convert for base Markdown.
// convert must pass raw HTML through unchanged.
func NewAnnotator(convert markdown.Func, opts ...Option) *Annotator {
	a := &Annotator{convert: convert}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Sanitized reports whether output passes through a sanitizer.
func (a *Annotator) Sanitized() bool {
	return a.sanitize != nil
}

// Render converts text to HTML. It never fails: if the converter returns
// an error the affected text is emitted escaped inside <pre>. Empty or
// blank input yields "".
func (a *Annotator) Render(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	src, callouts := extractCallouts(text)
	out, err := a.convert(substituteBadges(src))
	if err != nil {
		slog.Warn("markdown conversion failed, rendering plain text", "error", err)
		return a.finish(plainText(text))
	}
	out = InjectHeadingIDs(out)

	if len(callouts) > 0 {
		pairs := make([]string, 0, 2*len(callouts))
		for i, c := range callouts {
			body := a.fragment(substituteBadges(c.body))
			pairs = append(pairs, placeholder(i), renderCallout(c, body))
		}
		out = strings.NewReplacer(pairs...).Replace(out)
	}

	return a.finish(out)
}

func (a *Annotator) finish(out string) string {
	if a.sanitize != nil {
		return a.sanitize(out)
	}
	return out
}

// fragment converts a callout body, degrading to escaped text.
func (a *Annotator) fragment(src string) string {
	out, err := a.convert(src)
	if err != nil {
		slog.Warn("callout conversion failed, rendering plain text", "error", err)
		return plainText(src)
	}
	return out
}

func plainText(src string) string {
	return "<pre>" + html.EscapeString(src) + "</pre>\n"
}

// InjectHeadingIDs sets an id and HeadingClass on every <h2> and <h3> in
// rendered. The id is slug.Anchor of the element's text with nested tags
// removed and entities decoded, which matches the id Headings derives
// from the source line. Existing attributes on the element are replaced.
func InjectHeadingIDs(rendered string) string {
	return renderedHeading.ReplaceAllStringFunc(rendered, func(match string) string {
		m := renderedHeading.FindStringSubmatch(match)
		level, inner := m[1], m[2]
		id := slug.Anchor(headingText(inner))
		return fmt.Sprintf(`<h%s id="%s" class="%s">%s</h%s>`, level, id, HeadingClass, inner, level)
	})
}

// headingText reduces heading markup to its plain-text label.
func headingText(inner string) string {
	text := htmlTag.ReplaceAllString(inner, "")
	return strings.TrimSpace(html.UnescapeString(text))
}
