// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"exploracms/internal/models"
)

// CommentStore handles all comment-related database operations.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database
// connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `cm.id, cm.destination_id, cm.user_name, cm.user_email,
	cm.comment_text, cm.is_approved, cm.post_date`

// CommentStatus selects an approval state in listings.
type CommentStatus string

const (
	StatusAll      CommentStatus = "all"
	StatusPending  CommentStatus = "pending"
	StatusApproved CommentStatus = "approved"
)

// ParseCommentStatus maps a query-string value to a CommentStatus,
// falling back to StatusAll for anything unrecognized.
func ParseCommentStatus(s string) CommentStatus {
	switch CommentStatus(s) {
	case StatusPending, StatusApproved:
		return CommentStatus(s)
	default:
		return StatusAll
	}
}

// CommentFilter narrows the moderation listing. Zero values mean "no filter".
type CommentFilter struct {
	Status        CommentStatus
	DestinationID *uuid.UUID
	Page          int // 1-based
	PerPage       int
}

// List returns comments matching the filter, newest first, plus the total
// matching count. Each comment carries the destination name and slug joined
// in; comments whose destination has been deleted still appear, with the
// joined fields left nil.
func (s *CommentStore) List(f CommentFilter) ([]models.Comment, int, error) {
	where, args := buildCommentPredicates(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM comments cm` + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	if f.PerPage <= 0 {
		f.PerPage = 20
	}
	if f.Page < 1 {
		f.Page = 1
	}

	query := fmt.Sprintf(`
		SELECT `+commentColumns+`, d.name, d.slug
		FROM comments cm
		LEFT JOIN destinations d ON d.id = cm.destination_id
		%s
		ORDER BY cm.post_date DESC
		LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.DestinationID, &c.UserName, &c.UserEmail,
			&c.CommentText, &c.IsApproved, &c.PostDate,
			&c.DestinationName, &c.DestinationSlug,
		); err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

// buildCommentPredicates assembles the WHERE clause and bound arguments
// for List.
func buildCommentPredicates(f CommentFilter) (string, []any) {
	var conds []string
	var args []any

	switch f.Status {
	case StatusPending:
		conds = append(conds, "cm.is_approved = FALSE")
	case StatusApproved:
		conds = append(conds, "cm.is_approved = TRUE")
	}
	if f.DestinationID != nil {
		args = append(args, *f.DestinationID)
		conds = append(conds, fmt.Sprintf("cm.destination_id = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Create inserts a new comment. Comments always start unapproved.
func (s *CommentStore) Create(c *models.Comment) (*models.Comment, error) {
	row := s.db.QueryRow(`
		INSERT INTO comments (destination_id, user_name, user_email, comment_text)
		VALUES ($1, $2, $3, $4)
		RETURNING id, destination_id, user_name, user_email, comment_text, is_approved, post_date`,
		c.DestinationID, c.UserName, c.UserEmail, c.CommentText,
	)
	var out models.Comment
	err := row.Scan(
		&out.ID, &out.DestinationID, &out.UserName, &out.UserEmail,
		&out.CommentText, &out.IsApproved, &out.PostDate,
	)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &out, nil
}

// SetApproval flips the approval flag on a single comment. Missing IDs are
// a no-op.
func (s *CommentStore) SetApproval(id uuid.UUID, approved bool) error {
	_, err := s.db.Exec(`UPDATE comments SET is_approved = $1 WHERE id = $2`, approved, id)
	if err != nil {
		return fmt.Errorf("set comment approval: %w", err)
	}
	return nil
}

// Delete removes a comment by ID. Missing IDs are a no-op.
func (s *CommentStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// BulkSetApproval applies an approval flag to all the given comment IDs in
// one statement and returns how many rows changed. IDs that no longer exist
// simply do not count toward the total.
func (s *CommentStore) BulkSetApproval(ids []uuid.UUID, approved bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders, args := bulkIDArgs(ids, 1)
	args = append([]any{approved}, args...)
	res, err := s.db.Exec(
		`UPDATE comments SET is_approved = $1 WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk set comment approval: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk set comment approval: %w", err)
	}
	return n, nil
}

// BulkDelete removes all the given comment IDs in one statement and returns
// how many rows were deleted.
func (s *CommentStore) BulkDelete(ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders, args := bulkIDArgs(ids, 0)
	res, err := s.db.Exec(`DELETE FROM comments WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk delete comments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk delete comments: %w", err)
	}
	return n, nil
}

// bulkIDArgs builds a "$2, $3, ..." placeholder list starting after `offset`
// leading parameters, plus the matching argument slice.
func bulkIDArgs(ids []uuid.UUID, offset int) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", offset+i+1)
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}

// CommentStats summarizes the moderation queue for the dashboard.
type CommentStats struct {
	Total    int
	Approved int
	Pending  int
}

// Stats returns total, approved, and pending comment counts.
func (s *CommentStore) Stats() (CommentStats, error) {
	var st CommentStats
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_approved),
		       COUNT(*) FILTER (WHERE NOT is_approved)
		FROM comments
	`).Scan(&st.Total, &st.Approved, &st.Pending)
	if err != nil {
		return CommentStats{}, fmt.Errorf("comment stats: %w", err)
	}
	return st, nil
}

// ListRecent returns the newest comments with destination names joined in,
// for the dashboard.
func (s *CommentStore) ListRecent(limit int) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT `+commentColumns+`, d.name, d.slug
		FROM comments cm
		LEFT JOIN destinations d ON d.id = cm.destination_id
		ORDER BY cm.post_date DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.DestinationID, &c.UserName, &c.UserEmail,
			&c.CommentText, &c.IsApproved, &c.PostDate,
			&c.DestinationName, &c.DestinationSlug,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// ListApprovedForDestination returns all approved comments for one
// destination, newest first. Used on the public detail page.
func (s *CommentStore) ListApprovedForDestination(destinationID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT `+commentColumns+`
		FROM comments cm
		WHERE cm.destination_id = $1 AND cm.is_approved = TRUE
		ORDER BY cm.post_date DESC
	`, destinationID)
	if err != nil {
		return nil, fmt.Errorf("list approved comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.DestinationID, &c.UserName, &c.UserEmail,
			&c.CommentText, &c.IsApproved, &c.PostDate,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
