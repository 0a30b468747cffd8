// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package transfer

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
)

type markdownMeta struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
}

// DecodeMarkdown turns a Markdown file into a record. The policy name comes
// from the frontmatter (name, then title), else the first "# " heading,
// else the file name without its extension. The frontmatter block is not
// part of the content.
func DecodeMarkdown(fileName string, data []byte) (Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Record{}, ErrEmptyFile
	}

	var meta markdownMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return Record{}, fmt.Errorf("%w: frontmatter in %s: %w", ErrInvalidFormat, fileName, err)
	}

	content := strings.TrimLeft(string(body), "\r\n")
	name := strings.TrimSpace(meta.Name)
	if name == "" {
		name = strings.TrimSpace(meta.Title)
	}
	if name == "" {
		name = firstTitle(content)
	}
	if name == "" {
		base := filepath.Base(fileName)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return Record{Name: name, Content: content}, nil
}

func firstTitle(content string) string {
	for line := range strings.Lines(content) {
		if title, ok := strings.CutPrefix(strings.TrimRight(line, "\r\n"), "# "); ok {
			return strings.TrimSpace(title)
		}
	}
	return ""
}

// IsMarkdownFile reports whether a file name looks like a Markdown document.
func IsMarkdownFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
