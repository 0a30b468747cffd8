// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"policyportal/internal/models"
)

// PolicyCreator persists new policies.
type PolicyCreator interface {
	Create(ctx context.Context, name, content string, categoryID *string) (*models.Policy, error)
}

// Validate reports whether a record can become a policy: both name and
// content must be present and not blank.
func (r Record) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.By(notBlank("name"))),
		validation.Field(&r.Content, validation.Required, validation.By(notBlank("content"))),
	)
}

func notBlank(field string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError("transfer.record."+field+"_blank", field+" must not be blank")
		}
		return nil
	}
}

// Result summarizes an import or sync run.
type Result struct {
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
}

// Message is the user-facing summary of an import.
func (r Result) Message() string {
	return fmt.Sprintf("Import successful: %d policies added to General.", r.Added)
}

// Importer creates one new policy in the general category per valid record.
type Importer struct {
	policies PolicyCreator
}

// NewImporter creates an Importer writing through policies.
func NewImporter(policies PolicyCreator) *Importer {
	return &Importer{policies: policies}
}

// Import stores every valid record and skips the rest. It stops at the
// first store error, returning the counts reached so far.
func (im *Importer) Import(ctx context.Context, records []Record) (Result, error) {
	var res Result
	general := models.GeneralCategoryID

	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			slog.Debug("import record skipped", "index", i, "error", err)
			res.Skipped++
			continue
		}
		if _, err := im.policies.Create(ctx, rec.Name, rec.Content, &general); err != nil {
			return res, fmt.Errorf("import record %d (%q): %w", i, rec.Name, err)
		}
		res.Added++
	}
	return res, nil
}

// ImportJSON decodes an export payload and imports it.
func (im *Importer) ImportJSON(ctx context.Context, data []byte) (Result, error) {
	records, err := Decode(data)
	if err != nil {
		return Result{}, err
	}
	return im.Import(ctx, records)
}

// ImportFile imports a JSON export or a Markdown document, chosen by file
// name extension.
func (im *Importer) ImportFile(ctx context.Context, fileName string, data []byte) (Result, error) {
	if IsMarkdownFile(fileName) {
		rec, err := DecodeMarkdown(fileName, data)
		if err != nil {
			return Result{}, err
		}
		return im.Import(ctx, []Record{rec})
	}
	return im.ImportJSON(ctx, data)
}

// IsInputError reports whether err was caused by the uploaded data rather
// than by the store.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) || errors.Is(err, ErrEmptyFile)
}
