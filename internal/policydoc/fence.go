// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package policydoc

import "strings"

// fenceTracker follows fenced code blocks across successive lines. A block
// opened by a run of n backticks or tildes is closed only by a run of at
// least n of the same character with nothing after it but spaces. An
// unclosed block runs to the end of the document.
type fenceTracker struct {
	char byte
	size int
}

// inCode reports whether line is a fence or sits inside a fenced block.
// Lines must be fed in document order.
func (f *fenceTracker) inCode(line string) bool {
	char, size, rest, ok := fenceRun(line)
	if f.size == 0 {
		if !ok || (char == '`' && strings.Contains(rest, "`")) {
			return false
		}
		f.char, f.size = char, size
		return true
	}
	if ok && char == f.char && size >= f.size && strings.TrimRight(rest, " \t") == "" {
		f.char, f.size = 0, 0
	}
	return true
}

// fenceRun parses a fence marker: up to three spaces of indent followed by
// three or more backticks or tildes. rest is the text after the run.
func fenceRun(line string) (char byte, size int, rest string, ok bool) {
	i := 0
	for i < len(line) && i < 3 && line[i] == ' ' {
		i++
	}
	if i == len(line) || (line[i] != '`' && line[i] != '~') {
		return 0, 0, "", false
	}
	char = line[i]
	j := i
	for j < len(line) && line[j] == char {
		j++
	}
	if j-i < 3 {
		return 0, 0, "", false
	}
	return char, j - i, line[j:], true
}

// splitLines splits text on "\n" and drops a trailing "\r" from each line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
