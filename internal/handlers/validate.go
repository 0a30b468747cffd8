// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validation limits for form fields.
const (
	maxNameLen         = 300
	maxContentLen      = 500_000
	maxCategoryNameLen = 100
)

// categoryIcons are the icon tags a category may carry.
var categoryIcons = []any{"Folder", "Shield", "Lock", "Users", "Server"}

// policyForm is the edit form of a policy.
type policyForm struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

func (f policyForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name,
			validation.Required.Error("Policy name is required."),
			validation.RuneLength(0, maxNameLen).Error("Policy name is too long (max 300 characters)."),
		),
		validation.Field(&f.Content,
			validation.RuneLength(0, maxContentLen).Error("Policy content is too long (max 500,000 characters)."),
		),
	)
}

// categoryForm is the add-category form.
type categoryForm struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (f categoryForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name,
			validation.Required.Error("Category name is required."),
			validation.RuneLength(0, maxCategoryNameLen).Error("Category name is too long (max 100 characters)."),
		),
		validation.Field(&f.Icon, validation.In(categoryIcons...).Error("Unknown category icon.")),
	)
}

// loginForm is the sign-in form.
type loginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (f loginForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Username, validation.Required.Error("Username is required.")),
		validation.Field(&f.Password, validation.Required.Error("Password is required.")),
	)
}

// formMessage returns the message of the first failing field in order, so
// users always see the same error for the same input.
func formMessage(err error, order ...string) string {
	if err == nil {
		return ""
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	for _, field := range order {
		if fieldErr, ok := errs[field]; ok {
			return fieldErr.Error()
		}
	}
	return errs.Error()
}
