// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// GeneralCategoryID is the category that always exists. Imported and
// uncategorised policies land here.
const GeneralCategoryID = "general"

// DefaultCategoryIcon is the icon tag given to new categories.
const DefaultCategoryIcon = "Folder"

// Category groups policies in the portal sidebar. Its ID is a slug of the
// name chosen at creation time.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`

	// Virtual field populated by store methods.
	PolicyCount int `json:"policy_count"`
}
