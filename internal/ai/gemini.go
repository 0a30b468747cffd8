// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// geminiProvider implements the Provider interface with the Google GenAI SDK
// against the Gemini Developer API.
type geminiProvider struct {
	client *genai.Client
	model  string
}

// newGemini creates a Gemini provider. A non-empty BaseURL overrides the
// API endpoint.
func newGemini(ctx context.Context, cfg ProviderConfig) (*geminiProvider, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &geminiProvider{client: client, model: cfg.Model}, nil
}

func (p *geminiProvider) Name() string { return "gemini" }

// Generate calls generateContent with the system prompt as the system
// instruction and returns the concatenated text parts.
func (p *geminiProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var config *genai.GenerateContentConfig
	if systemPrompt != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(userPrompt), config)
	if err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && isAuthStatus(apiErr.Code) {
			return "", fmt.Errorf("gemini: %w: %w", ErrNotConfigured, err)
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

// isAuthStatus reports whether an HTTP status means the key was rejected.
func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
