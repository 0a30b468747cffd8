// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package policydoc

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// calloutHeader matches the first line of a callout: "> [!KIND] title".
var calloutHeader = regexp.MustCompile(`^> ?\[!([A-Za-z]+)\]\s*(.*)$`)

// CalloutStyle is the presentation of one callout kind.
type CalloutStyle struct {
	Classes string
	Icon    string
}

// calloutStyles maps an upper-cased kind to its style.
var calloutStyles = map[string]CalloutStyle{
	"NOTE": {
		Classes: "bg-blue-50 border-blue-200 text-blue-900",
		Icon:    `<svg xmlns="http://www.w3.org/2000/svg" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor" class="w-5 h-5 text-blue-500"><path stroke-linecap="round" stroke-linejoin="round" d="M11.25 11.25l.041-.02a.75.75 0 011.063.852l-.708 2.836a.75.75 0 001.063.853l.041-.021M21 12a9 9 0 11-18 0 9 9 0 0118 0zm-9-3.75h.008v.008H12V8.25z" /></svg>`,
	},
	"WARNING": {
		Classes: "bg-orange-50 border-orange-200 text-orange-900",
		Icon:    `<svg xmlns="http://www.w3.org/2000/svg" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor" class="w-5 h-5 text-orange-500"><path stroke-linecap="round" stroke-linejoin="round" d="M12 9v3.75m-9.303 3.376c-.866 1.5.174 3.35 1.94 3.35h14.72c1.766 0 2.806-1.85 1.94-3.35L12 2.25 2.983 16.076zM12 15.75h.007v.008H12v-.008z" /></svg>`,
	},
	"INFO": {
		Classes: "bg-indigo-50 border-indigo-200 text-indigo-900",
		Icon:    `<svg xmlns="http://www.w3.org/2000/svg" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor" class="w-5 h-5 text-indigo-500"><path stroke-linecap="round" stroke-linejoin="round" d="M13 16h-1v-4h-1m1-4h.01M21 12a9 9 0 11-18 0 9 9 0 0118 0z" /></svg>`,
	},
	"TIP": {
		Classes: "bg-emerald-50 border-emerald-200 text-emerald-900",
		Icon:    `<svg xmlns="http://www.w3.org/2000/svg" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor" class="w-5 h-5 text-emerald-500"><path stroke-linecap="round" stroke-linejoin="round" d="M9 12.75L11.25 15 15 9.75M21 12a9 9 0 11-18 0 9 9 0 0118 0z" /></svg>`,
	},
}

// neutralStyle applies to any kind without an entry in calloutStyles.
var neutralStyle = CalloutStyle{Classes: "bg-slate-50 border-slate-200 text-slate-900"}

// StyleFor returns the style of a callout kind, case-insensitively.
func StyleFor(kind string) CalloutStyle {
	if s, ok := calloutStyles[strings.ToUpper(kind)]; ok {
		return s
	}
	return neutralStyle
}

// callout is one recognised callout block.
type callout struct {
	kind  string
	title string
	body  string
}

// label is the heading shown in the container.
func (c callout) label() string {
	if c.title != "" {
		return c.title
	}
	return c.kind
}

// placeholder is the HTML comment that stands in for callout n until the
// surrounding document has been converted.
func placeholder(n int) string {
	return fmt.Sprintf("<!-- policydoc:callout:%d -->", n)
}

// extractCallouts replaces every well-formed callout in text with a
// placeholder on its own block and returns the rewritten text along with
// the callouts in order. A header line without continuation lines is left
// untouched and renders as an ordinary blockquote.
func extractCallouts(text string) (string, []callout) {
	if !strings.Contains(text, "[!") {
		return text, nil
	}

	lines := splitLines(text)
	out := make([]string, 0, len(lines))
	var found []callout
	var fence fenceTracker

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if fence.inCode(line) {
			out = append(out, line)
			continue
		}
		m := calloutHeader.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}

		end := i + 1
		for end < len(lines) && strings.HasPrefix(lines[end], ">") {
			end++
		}
		if end == i+1 {
			out = append(out, line)
			continue
		}

		body := make([]string, 0, end-i-1)
		for _, l := range lines[i+1 : end] {
			l = strings.TrimPrefix(l, ">")
			l = strings.TrimPrefix(l, " ")
			body = append(body, l)
		}
		found = append(found, callout{
			kind:  m[1],
			title: strings.TrimSpace(m[2]),
			body:  strings.Join(body, "\n"),
		})
		out = append(out, "", placeholder(len(found)-1), "")
		i = end - 1
	}

	return strings.Join(out, "\n"), found
}

// renderCallout wraps an already converted body in the styled container.
func renderCallout(c callout, bodyHTML string) string {
	style := StyleFor(c.kind)
	var b strings.Builder
	b.WriteString(`<div class="p-4 rounded-lg border `)
	b.WriteString(style.Classes)
	b.WriteString(` my-6 shadow-sm">`)
	b.WriteString(`<div class="flex items-center gap-2 mb-2">`)
	b.WriteString(style.Icon)
	b.WriteString(`<h4 class="font-bold text-sm uppercase tracking-wider opacity-90">`)
	b.WriteString(html.EscapeString(c.label()))
	b.WriteString(`</h4></div>`)
	b.WriteString(`<div class="text-sm leading-relaxed opacity-90">`)
	b.WriteString(strings.TrimSpace(bodyHTML))
	b.WriteString(`</div></div>`)
	return b.String()
}
