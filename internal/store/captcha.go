// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"exploracms/internal/models"
)

// CaptchaStore persists challenge sessions in the database so any instance
// behind a load balancer can verify a token issued by another.
type CaptchaStore struct {
	db *sql.DB
}

// NewCaptchaStore returns a new CaptchaStore.
func NewCaptchaStore(db *sql.DB) *CaptchaStore {
	return &CaptchaStore{db: db}
}

// Create stores a challenge under its session token.
func (s *CaptchaStore) Create(sessionID, captchaText string, expiresAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO captcha_sessions (session_id, captcha_text, expires_at)
		VALUES ($1, $2, $3)
	`, sessionID, captchaText, expiresAt)
	if err != nil {
		return fmt.Errorf("create captcha session: %w", err)
	}
	return nil
}

// FindValid returns the challenge for a session token if it has not yet
// expired. Returns nil for unknown or expired tokens.
func (s *CaptchaStore) FindValid(sessionID string) (*models.CaptchaSession, error) {
	var cs models.CaptchaSession
	err := s.db.QueryRow(`
		SELECT session_id, captcha_text, created_at, expires_at
		FROM captcha_sessions
		WHERE session_id = $1 AND expires_at > NOW()
	`, sessionID).Scan(&cs.SessionID, &cs.CaptchaText, &cs.CreatedAt, &cs.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find captcha session: %w", err)
	}
	return &cs, nil
}

// Delete removes a challenge and reports whether a row was actually deleted.
// The rows-affected check is what makes consumption single-use under
// concurrent submits.
func (s *CaptchaStore) Delete(sessionID string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM captcha_sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return false, fmt.Errorf("delete captcha session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete captcha session: %w", err)
	}
	return n > 0, nil
}

// DeleteExpired sweeps out challenges past their expiry and returns how many
// were removed.
func (s *CaptchaStore) DeleteExpired() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM captcha_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired captcha sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired captcha sessions: %w", err)
	}
	return n, nil
}
