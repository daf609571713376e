// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a visitor-submitted comment on a destination. Comments start
// unapproved and only appear on the public site after moderation. There is
// no persisted "rejected" state — rejecting flips the flag back to pending.
type Comment struct {
	ID            uuid.UUID `json:"id"`
	DestinationID uuid.UUID `json:"destination_id"`
	UserName      string    `json:"user_name"`
	UserEmail     *string   `json:"user_email,omitempty"`
	CommentText   string    `json:"comment_text"`
	IsApproved    bool      `json:"is_approved"`
	PostDate      time.Time `json:"post_date"`

	// DestinationName and DestinationSlug are populated by moderation
	// listing queries that join destinations. They stay nil for comments
	// whose destination has since been deleted.
	DestinationName *string `json:"destination_name,omitempty"`
	DestinationSlug *string `json:"destination_slug,omitempty"`
}

// StatusLabel returns the human-readable moderation state.
func (c *Comment) StatusLabel() string {
	if c.IsApproved {
		return "Approved"
	}
	return "Pending"
}
