// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/mail"
	"unicode/utf8"
)

// Form field limits. Comment lengths are counted in runes so multibyte
// input is not penalized.
const (
	maxCommentAuthorLen = 100
	minCommentLen       = 10
	maxCommentLen       = 1000

	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
)

// validEmail reports whether s parses as a bare RFC 5322 address.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// validateCommentForm checks the public comment fields and returns one
// message per failed field. Email is optional but must parse when given.
func validateCommentForm(name, email, body string) []string {
	var errs []string
	if name == "" {
		errs = append(errs, "Please enter your name.")
	} else if utf8.RuneCountInString(name) > maxCommentAuthorLen {
		errs = append(errs, "Name must be 100 characters or fewer.")
	}
	if email != "" && !validEmail(email) {
		errs = append(errs, "That email address doesn't look valid.")
	}
	switch n := utf8.RuneCountInString(body); {
	case n < minCommentLen:
		errs = append(errs, "Comment must be at least 10 characters.")
	case n > maxCommentLen:
		errs = append(errs, "Comment must be 1000 characters or fewer.")
	}
	return errs
}

// validateRegisterForm checks the self-registration fields.
func validateRegisterForm(username, email, password, confirm string) []string {
	var errs []string
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		errs = append(errs, "Username must be between 3 and 50 characters.")
	}
	if !validEmail(email) {
		errs = append(errs, "A valid email address is required.")
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		errs = append(errs, "Password must be at least 6 characters.")
	}
	if password != confirm {
		errs = append(errs, "Passwords do not match.")
	}
	return errs
}

// validateUserForm checks the admin user form. On create a password is
// required; on edit a blank password means "keep the current one".
func validateUserForm(username, email, role, password string, requirePassword bool) []string {
	var errs []string
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		errs = append(errs, "Username must be between 3 and 50 characters.")
	}
	if !validEmail(email) {
		errs = append(errs, "A valid email address is required.")
	}
	if role != "admin" && role != "editor" {
		errs = append(errs, "Role must be admin or editor.")
	}
	if password == "" {
		if requirePassword {
			errs = append(errs, "Password must be at least 6 characters.")
		}
	} else if utf8.RuneCountInString(password) < minPasswordLen {
		errs = append(errs, "Password must be at least 6 characters.")
	}
	return errs
}

// validateDestinationForm checks the destination form fields.
func validateDestinationForm(name, region, description string) []string {
	var errs []string
	if name == "" {
		errs = append(errs, "Name is required.")
	}
	if region == "" {
		errs = append(errs, "Region is required.")
	}
	if description == "" {
		errs = append(errs, "Description is required.")
	}
	return errs
}
