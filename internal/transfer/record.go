// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package transfer moves policies in and out of the portal: JSON export
// and import, Markdown file import, live sync from a remote JSON URL and
// archiving exports to object storage.
package transfer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"policyportal/internal/models"
)

// ExportAllFileName is the download name of a full export.
const ExportAllFileName = "it_policies_export.json"

// Record is the exchange shape of one policy. ID is informational: imports
// always create new policies.
type Record struct {
	ID      int64  `json:"id,omitempty"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// RecordOf converts a stored policy into its exchange record.
func RecordOf(p models.Policy) Record {
	return Record{ID: p.ID, Name: p.Name, Content: p.Content}
}

// Export encodes policies as an indented JSON array in the given order.
func Export(policies []models.Policy) ([]byte, error) {
	records := make([]Record, 0, len(policies))
	for _, p := range policies {
		records = append(records, RecordOf(p))
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// ExportOne encodes a single policy as an indented JSON object.
func ExportOne(p models.Policy) ([]byte, error) {
	data, err := json.MarshalIndent(RecordOf(p), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode policy %d: %w", p.ID, err)
	}
	return data, nil
}

var unsafeFileChar = regexp.MustCompile(`(?i)[^a-z0-9]`)

// FileName returns the download name for a single-policy export. Every
// character outside [a-zA-Z0-9] becomes an underscore.
func FileName(policyName string) string {
	return strings.ToLower(unsafeFileChar.ReplaceAllString(policyName, "_")) + "_policy.json"
}
