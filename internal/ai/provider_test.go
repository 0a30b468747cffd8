// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

// TestGeminiLive drafts a policy against the real API.
// Skipped if GEMINI_API_KEY is not set.
func TestGeminiLive(t *testing.T) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	reg := NewRegistry("gemini", map[string]ProviderConfig{
		"gemini": {APIKey: key, Model: os.Getenv("GEMINI_MODEL")},
	})
	w := NewPolicyWriter(reg, 90*time.Second)

	text, err := w.Draft(context.Background(), "Password Management")
	if err != nil {
		t.Fatalf("Draft failed: %v", err)
	}
	if !strings.Contains(text, "#") {
		t.Errorf("Draft did not return Markdown headings: %q", text)
	}

	t.Logf("Gemini draft: %d chars", len(text))
}
