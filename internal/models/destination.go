// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Destination represents a tourism destination shown on the public site.
type Destination struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Region      string     `json:"region"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	ImagePath   *string    `json:"image_path,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// CategoryName is populated by listing queries that join categories.
	CategoryName *string `json:"category_name,omitempty"`
	// CommentCount is populated by listing queries that count approved comments.
	CommentCount int `json:"comment_count,omitempty"`
}

// HasImage returns true if an uploaded image is associated with the destination.
func (d *Destination) HasImage() bool {
	return d.ImagePath != nil && *d.ImagePath != ""
}
