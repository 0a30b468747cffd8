// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package policydoc

import (
	"iter"
	"regexp"
	"strings"

	"policyportal/internal/slug"
)

// headingLine matches an ATX heading of level 2 or 3.
var headingLine = regexp.MustCompile(`^(#{2,3})\s+(.*)$`)

// Heading is one table-of-contents entry.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Headings returns the level-2 and level-3 headings of text in document
// order. The sequence is lazy and may be ranged over any number of times.
// Headings with identical text share the same ID; no suffixes are added.
// Lines inside fenced code blocks are ignored.
func Headings(text string) iter.Seq[Heading] {
	return func(yield func(Heading) bool) {
		if text == "" {
			return
		}
		var fence fenceTracker
		for _, line := range splitLines(text) {
			if fence.inCode(line) {
				continue
			}
			m := headingLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			title := strings.TrimSpace(m[2])
			h := Heading{ID: slug.Anchor(title), Text: title, Level: len(m[1])}
			if !yield(h) {
				return
			}
		}
	}
}

// ExtractHeadings collects Headings into a slice. It never returns nil.
func ExtractHeadings(text string) []Heading {
	out := make([]Heading, 0)
	for h := range Headings(text) {
		out = append(out, h)
	}
	return out
}
