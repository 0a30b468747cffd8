// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// ErrEmptyFile is returned when an import payload has no content.
	ErrEmptyFile = errors.New("file is empty")
	// ErrInvalidFormat is returned when a payload is not a policy export.
	ErrInvalidFormat = errors.New("invalid policy export format")
)

// recordsSchema accepts a full export (array of records) or a single-policy
// export (one record). Fields may be missing; the importer skips records
// without a name or content.
const recordsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$defs": {
    "record": {
      "type": "object",
      "properties": {
        "id": {"type": ["integer", "string", "null"]},
        "name": {"type": ["string", "null"]},
        "content": {"type": ["string", "null"]}
      }
    }
  },
  "oneOf": [
    {"type": "array", "items": {"$ref": "#/$defs/record"}},
    {"$ref": "#/$defs/record"}
  ]
}`

var schema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("records.json", strings.NewReader(recordsSchema)); err != nil {
		panic(fmt.Sprintf("transfer: add schema: %v", err))
	}
	return compiler.MustCompile("records.json")
}

// FormatError lists the schema violations of a rejected payload.
type FormatError struct {
	Issues []string
}

func (e *FormatError) Error() string {
	if len(e.Issues) == 0 {
		return ErrInvalidFormat.Error()
	}
	return ErrInvalidFormat.Error() + ": " + strings.Join(e.Issues, "; ")
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidFormat
}

// Decode parses an export payload into records. Both the export-all array
// and a single exported object are accepted.
func Decode(data []byte) ([]Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	err := dec.Decode(&doc)
	if err == nil {
		if _, terr := dec.Token(); terr != io.EOF {
			err = errors.New("invalid character after top-level value")
		}
	}
	if err != nil {
		return nil, &FormatError{Issues: []string{"not valid JSON: " + err.Error()}}
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, &FormatError{Issues: collectIssues(verr)}
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	trimmed := bytes.TrimSpace(data)
	if trimmed[0] == '{' {
		var rec looseRecord
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		}
		return []Record{rec.record()}, nil
	}

	var loose []looseRecord
	if err := json.Unmarshal(trimmed, &loose); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	records := make([]Record, 0, len(loose))
	for _, rec := range loose {
		records = append(records, rec.record())
	}
	return records, nil
}

// looseRecord tolerates string ids written by other tools. Numeric strings
// are parsed; any other id decodes as 0.
type looseRecord struct {
	ID      json.RawMessage `json:"id"`
	Name    *string         `json:"name"`
	Content *string         `json:"content"`
}

func (l looseRecord) record() Record {
	r := Record{ID: looseID(l.ID)}
	if l.Name != nil {
		r.Name = *l.Name
	}
	if l.Content != nil {
		r.Content = *l.Content
	}
	return r
}

func looseID(raw json.RawMessage) int64 {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func collectIssues(err *jsonschema.ValidationError) []string {
	var issues []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			loc := node.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			issues = append(issues, loc+": "+strings.TrimSpace(node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
