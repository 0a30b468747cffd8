// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package policydoc

import "strings"

// Badge markup replaces the literal bold markers before Markdown
// conversion. Each fragment is a single line of inline HTML so the
// converter keeps it inside the surrounding paragraph.
const (
	simpleBadge = `<span class="inline-flex items-center px-2 py-0.5 rounded text-xs font-bold bg-green-100 text-green-800 mr-2">Simple:</span>`

	liveExampleBadge = `<span class="inline-flex items-center px-2 py-0.5 rounded text-xs font-bold bg-orange-100 text-orange-800 mr-2 border border-orange-200 shadow-sm">` +
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="currentColor" class="w-3 h-3 mr-1 text-orange-500">` +
		`<path fill-rule="evenodd" d="M9 4.5a.75.75 0 01.721.544l.813 2.846a3.75 3.75 0 002.576 2.576l2.846.813a.75.75 0 010 1.442l-2.846.813a3.75 3.75 0 00-2.576 2.576l-.813 2.846a.75.75 0 01-1.442 0l-.813-2.846a3.75 3.75 0 00-2.576-2.576l-2.846-.813a.75.75 0 010-1.442l2.846-.813a3.75 3.75 0 002.576-2.576l.813-2.846A.75.75 0 019 4.5zM6 20.25a.75.75 0 01.75.75v.75a.75.75 0 01-1.5 0v-.75a.75.75 0 01.75-.75zm12 0a.75.75 0 01.75.75v.75a.75.75 0 01-1.5 0v-.75a.75.75 0 01.75-.75zM6 3a.75.75 0 01.75.75v.75a.75.75 0 01-1.5 0v-.75A.75.75 0 016 3zm12 0a.75.75 0 01.75.75v.75a.75.75 0 01-1.5 0v-.75A.75.75 0 0118 3z" clip-rule="evenodd" />` +
		`</svg>Live Example:</span>`

	punishmentBadge = `<span class="inline-flex items-center px-2 py-0.5 rounded text-xs font-bold bg-red-100 text-red-800 mr-2 border border-red-200 shadow-sm">` +
		`<span class="relative flex h-2 w-2 mr-2">` +
		`<span class="animate-ping absolute inline-flex h-full w-full rounded-full bg-red-400 opacity-75"></span>` +
		`<span class="relative inline-flex rounded-full h-2 w-2 bg-red-500"></span>` +
		`</span>Punishment:</span>`
)

var badgeReplacer = strings.NewReplacer(
	"**Simple:**", simpleBadge,
	"**Live Example:**", liveExampleBadge,
	"**Punishment:**", punishmentBadge,
)

// substituteBadges swaps badge markers for their markup outside fenced
// code blocks.
func substituteBadges(text string) string {
	if !strings.Contains(text, "**") {
		return text
	}
	lines := splitLines(text)
	var fence fenceTracker
	for i, line := range lines {
		if fence.inCode(line) {
			continue
		}
		lines[i] = badgeReplacer.Replace(line)
	}
	return strings.Join(lines, "\n")
}
