// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var (
	// ErrNotConfigured means no usable provider or API key is available.
	ErrNotConfigured = errors.New("ai service not configured")
	// ErrGenerationFailed wraps every other generation failure.
	ErrGenerationFailed = errors.New("ai generation failed")
)

// User-facing messages for the two failure kinds.
const (
	MsgNotConfigured    = "The AI service is not configured. Please contact the administrator to set the API key."
	MsgGenerationFailed = "Failed to generate content from AI. Please check the server configuration and try again."
)

// DefaultTimeout bounds a single draft request.
const DefaultTimeout = 2 * time.Minute

const policySystemPrompt = "You are an expert in IT security and compliance."

const policyPromptTemplate = `Write a comprehensive IT policy about "%s".
The policy should be well-structured and ready for a corporate environment.
Use Markdown for formatting. Include the following sections:
1.  **Overview**: A brief introduction.
2.  **Purpose**: The goal of the policy.
3.  **Scope**: Who this policy applies to.
4.  **Policy**: The main rules and guidelines, using sub-sections if necessary.
5.  **Policy Compliance**: How compliance is measured and what happens in case of non-compliance.
6.  **Related Standards, Policies and Processes**: A list of related documents.
7.  **Definitions and Terms**: A list of key terms.
8.  **Revision History**: A table for tracking changes.

Start the document with a level 3 markdown heading like this: '### Consensus Policy Resource Community' and include a disclaimer about free use for the internet community from the SANS institute.`

// Generator is the part of Registry that PolicyWriter needs.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// PolicyWriter drafts complete policy documents from a policy name.
type PolicyWriter struct {
	gen     Generator
	timeout time.Duration
}

// NewPolicyWriter creates a writer. A zero timeout uses DefaultTimeout.
func NewPolicyWriter(gen Generator, timeout time.Duration) *PolicyWriter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &PolicyWriter{gen: gen, timeout: timeout}
}

// PolicyPrompt returns the user prompt sent for a policy name.
func PolicyPrompt(name string) string {
	return fmt.Sprintf(policyPromptTemplate, name)
}

// Draft returns a Markdown body for the named policy. Errors match either
// ErrNotConfigured or ErrGenerationFailed.
func (w *PolicyWriter) Draft(ctx context.Context, name string) (string, error) {
	if w == nil || w.gen == nil {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	text, err := w.gen.Generate(ctx, policySystemPrompt, PolicyPrompt(name))
	if err != nil {
		slog.Error("policy draft failed", "policy", name, "error", err)
		if errors.Is(err, ErrNotConfigured) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	slog.Info("policy drafted", "policy", name, "chars", len(text), "duration", time.Since(start))
	return text, nil
}

// UserMessage maps a Draft error to the message shown to the user.
func UserMessage(err error) string {
	if errors.Is(err, ErrNotConfigured) {
		return MsgNotConfigured
	}
	return MsgGenerationFailed
}
