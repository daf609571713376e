// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// CaptchaSession is a short-lived challenge/response pair backing the
// public comment form. The session ID is an opaque token embedded as a
// hidden form field; the challenge text is rendered on the page. A session
// is valid strictly before ExpiresAt and is deleted once redeemed.
type CaptchaSession struct {
	SessionID   string    `json:"session_id"`
	CaptchaText string    `json:"captcha_text"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry instant.
func (c *CaptchaSession) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
