// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package captcha issues and verifies the text challenges that guard the
// public comment form. Challenges are stored server-side keyed by an opaque
// token, so the browser only ever sees the token and the rendered text.
package captcha

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"exploracms/internal/models"
)

// SessionStore is the persistence the service needs. *store.CaptchaStore
// satisfies it.
type SessionStore interface {
	Create(sessionID, captchaText string, expiresAt time.Time) error
	FindValid(sessionID string) (*models.CaptchaSession, error)
	Delete(sessionID string) (bool, error)
	DeleteExpired() (int64, error)
}

const challengeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Service issues single-use challenges with a fixed length and lifetime.
type Service struct {
	store  SessionStore
	length int
	ttl    time.Duration
}

// New returns a Service issuing challenges of the given length that expire
// after ttl.
func New(store SessionStore, length int, ttl time.Duration) *Service {
	return &Service{store: store, length: length, ttl: ttl}
}

// Challenge is a freshly issued captcha: the token travels in a hidden form
// field, the text is rendered to the visitor.
type Challenge struct {
	Token string
	Text  string
}

// Issue creates and persists a new challenge.
func (s *Service) Issue() (*Challenge, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	text, err := randomText(s.length)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(token, text, time.Now().Add(s.ttl)); err != nil {
		return nil, fmt.Errorf("issue captcha: %w", err)
	}
	return &Challenge{Token: token, Text: text}, nil
}

// Verify reports whether the answer matches the live challenge for the
// token. Comparison ignores case and surrounding whitespace. Unknown and
// expired tokens simply fail.
func (s *Service) Verify(token, answer string) (bool, error) {
	session, err := s.store.FindValid(token)
	if err != nil {
		return false, fmt.Errorf("verify captcha: %w", err)
	}
	if session == nil {
		return false, nil
	}
	return strings.EqualFold(strings.TrimSpace(answer), session.CaptchaText), nil
}

// Consume verifies the answer and, on success, deletes the challenge so it
// cannot be replayed. Of two concurrent submits with the same token, only
// the one whose delete removes the row succeeds.
func (s *Service) Consume(token, answer string) (bool, error) {
	ok, err := s.Verify(token, answer)
	if err != nil || !ok {
		return false, err
	}
	deleted, err := s.store.Delete(token)
	if err != nil {
		return false, fmt.Errorf("consume captcha: %w", err)
	}
	return deleted, nil
}

// SweepExpired removes challenges past their lifetime and returns how many
// were dropped. Called periodically from the server loop.
func (s *Service) SweepExpired() (int64, error) {
	return s.store.DeleteExpired()
}

// newToken returns 16 random bytes hex-encoded.
func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("captcha token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// randomText returns n uniformly random uppercase letters.
func randomText(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("captcha text: %w", err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = challengeAlphabet[int(b)%len(challengeAlphabet)]
	}
	return string(out), nil
}
