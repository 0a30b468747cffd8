// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts policy Markdown into HTML using goldmark.
// Raw HTML is passed through unchanged (WithUnsafe) because the policy
// annotator splices callout and badge markup into the source before
// conversion.
package markdown

import (
	"bytes"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrConversion is returned when goldmark fails to render a document.
var ErrConversion = errors.New("markdown conversion failed")

// Func converts Markdown source to an HTML fragment.
type Func func(source string) (string, error)

// md is the configured goldmark instance, reused across calls.
// Typographer and auto heading ids stay off: heading text must reach the
// HTML verbatim so that anchors derived from source and output agree.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM, // tables, strikethrough, autolinks, task lists
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(
				chromahtml.TabWidth(4),
			),
		),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// ToHTML converts Markdown source into HTML. It satisfies Func.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("%w: %w", ErrConversion, err)
	}
	return buf.String(), nil
}
