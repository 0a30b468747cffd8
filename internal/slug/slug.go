// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL-friendly identifiers from arbitrary strings.
// Anchor produces heading fragment ids for the policy table of contents and
// CategoryID produces category keys.
package slug

import (
	"regexp"
	"strings"
)

var (
	// anchorRun matches a maximal run of characters outside [a-z0-9].
	anchorRun = regexp.MustCompile(`[^a-z0-9]+`)
	// categoryChar matches a single character outside [a-z0-9].
	categoryChar = regexp.MustCompile(`[^a-z0-9]`)
)

// Anchor derives the fragment id for a heading. The text is lowercased,
// every maximal run of characters outside [a-z0-9] becomes a single hyphen
// and one leading or trailing hyphen is removed.
// Example: "2. Access & Control" → "2-access-control"
//
// Identical heading texts yield identical anchors.
func Anchor(text string) string {
	result := anchorRun.ReplaceAllString(strings.ToLower(text), "-")
	result = strings.TrimPrefix(result, "-")
	result = strings.TrimSuffix(result, "-")
	return result
}

// CategoryID derives a category key from its display name. Each character
// outside [a-z0-9] becomes a hyphen; runs are not collapsed, so existing
// keys stay stable.
// Example: "Human Resources" → "human-resources"
func CategoryID(name string) string {
	return categoryChar.ReplaceAllString(strings.ToLower(name), "-")
}
