// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package policydoc

import "github.com/microcosm-cc/bluemonday"

// NewSanitizer returns an HTML sanitizer for rendered policies. It starts
// from bluemonday's user-generated-content policy and additionally keeps
// what the annotator itself emits: class attributes, heading ids, inline
// SVG icons and the inline colours of highlighted code. Scripts, event
// handlers and unknown elements are removed.
func NewSanitizer() func(string) string {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("id").OnElements("h2", "h3")

	p.AllowElements("svg", "path")
	p.AllowAttrs("xmlns", "viewbox", "fill", "stroke", "stroke-width").OnElements("svg")
	p.AllowAttrs("d", "fill-rule", "clip-rule", "stroke-linecap", "stroke-linejoin").OnElements("path")

	p.AllowStyles("color", "background-color", "font-weight", "font-style", "text-decoration", "tab-size").
		OnElements("pre", "code", "span")

	return p.Sanitize
}
