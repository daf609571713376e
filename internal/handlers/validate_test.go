package handlers

import (
	"strings"
	"testing"
)

func TestValidateCommentForm(t *testing.T) {
	tests := []struct {
		name      string
		author    string
		email     string
		body      string
		wantError bool
	}{
		{"valid", "Amina", "amina@example.com", "A lovely place to visit.", false},
		{"valid without email", "Amina", "", "A lovely place to visit.", false},
		{"empty name", "", "", "A lovely place to visit.", true},
		{"name too long", strings.Repeat("a", 101), "", "A lovely place to visit.", true},
		{"name at limit", strings.Repeat("a", 100), "", "A lovely place to visit.", false},
		{"bad email", "Amina", "not-an-email", "A lovely place to visit.", true},
		{"body nine chars", "Amina", "", strings.Repeat("x", 9), true},
		{"body ten chars", "Amina", "", strings.Repeat("x", 10), false},
		{"body at limit", "Amina", "", strings.Repeat("x", 1000), false},
		{"body too long", "Amina", "", strings.Repeat("x", 1001), true},
		{"multibyte body counted in runes", "Amina", "", strings.Repeat("é", 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateCommentForm(tt.author, tt.email, tt.body)
			if tt.wantError && len(errs) == 0 {
				t.Error("expected errors, got none")
			}
			if !tt.wantError && len(errs) > 0 {
				t.Errorf("unexpected errors: %v", errs)
			}
		})
	}
}

func TestValidateRegisterForm(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		email     string
		password  string
		confirm   string
		wantError bool
	}{
		{"valid", "newuser", "new@example.com", "secret1", "secret1", false},
		{"username too short", "ab", "new@example.com", "secret1", "secret1", true},
		{"username too long", strings.Repeat("a", 51), "new@example.com", "secret1", "secret1", true},
		{"bad email", "newuser", "nope", "secret1", "secret1", true},
		{"password too short", "newuser", "new@example.com", "five5", "five5", true},
		{"password six chars", "newuser", "new@example.com", "sixsix", "sixsix", false},
		{"mismatch", "newuser", "new@example.com", "secret1", "secret2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateRegisterForm(tt.username, tt.email, tt.password, tt.confirm)
			if tt.wantError && len(errs) == 0 {
				t.Error("expected errors, got none")
			}
			if !tt.wantError && len(errs) > 0 {
				t.Errorf("unexpected errors: %v", errs)
			}
		})
	}
}

func TestValidateUserForm(t *testing.T) {
	tests := []struct {
		name        string
		username    string
		email       string
		role        string
		password    string
		requirePass bool
		wantError   bool
	}{
		{"valid create", "editor1", "e@example.com", "editor", "secret1", true, false},
		{"create without password", "editor1", "e@example.com", "editor", "", true, true},
		{"edit keeps password", "editor1", "e@example.com", "editor", "", false, false},
		{"edit short password", "editor1", "e@example.com", "editor", "abc", false, true},
		{"bad role", "editor1", "e@example.com", "superuser", "secret1", true, true},
		{"admin role", "boss", "b@example.com", "admin", "secret1", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateUserForm(tt.username, tt.email, tt.role, tt.password, tt.requirePass)
			if tt.wantError && len(errs) == 0 {
				t.Error("expected errors, got none")
			}
			if !tt.wantError && len(errs) > 0 {
				t.Errorf("unexpected errors: %v", errs)
			}
		})
	}
}

func TestValidateDestinationForm(t *testing.T) {
	tests := []struct {
		name        string
		destName    string
		region      string
		description string
		wantError   bool
	}{
		{"valid", "Yankari", "North East", "A game reserve.", false},
		{"missing name", "", "North East", "A game reserve.", true},
		{"missing region", "Yankari", "", "A game reserve.", true},
		{"missing description", "Yankari", "North East", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateDestinationForm(tt.destName, tt.region, tt.description)
			if tt.wantError && len(errs) == 0 {
				t.Error("expected errors, got none")
			}
			if !tt.wantError && len(errs) > 0 {
				t.Errorf("unexpected errors: %v", errs)
			}
		})
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "user.name+tag@example.org"}
	invalid := []string{"", "plain", "@missing.local", "Name <a@b.co>"}

	for _, e := range valid {
		if !validEmail(e) {
			t.Errorf("expected %q to be valid", e)
		}
	}
	for _, e := range invalid {
		if validEmail(e) {
			t.Errorf("expected %q to be invalid", e)
		}
	}
}
