// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Policy is a named Markdown document, optionally filed under a category.
type Policy struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	CategoryID *string   `json:"category_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// InCategory reports whether the policy is filed under id. Policies
// without a category count as members of the general category.
func (p *Policy) InCategory(id string) bool {
	if p.CategoryID == nil {
		return id == GeneralCategoryID
	}
	return *p.CategoryID == id
}

// PolicyPatch is a partial update. Nil fields are left unchanged.
type PolicyPatch struct {
	Name       *string `json:"name,omitempty"`
	Content    *string `json:"content,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p PolicyPatch) IsEmpty() bool {
	return p.Name == nil && p.Content == nil && p.CategoryID == nil
}
