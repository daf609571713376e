// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"exploracms/internal/models"
)

// DestinationStore handles all destination-related database operations.
type DestinationStore struct {
	db *sql.DB
}

// NewDestinationStore creates a new DestinationStore with the given
// database connection.
func NewDestinationStore(db *sql.DB) *DestinationStore {
	return &DestinationStore{db: db}
}

const destinationColumns = `d.id, d.name, d.slug, d.description, d.region,
	d.category_id, d.image_path, d.created_at, d.updated_at`

// scanDestination scans a row into a Destination struct.
func scanDestination(scanner interface{ Scan(...any) error }) (*models.Destination, error) {
	var d models.Destination
	err := scanner.Scan(
		&d.ID, &d.Name, &d.Slug, &d.Description, &d.Region,
		&d.CategoryID, &d.ImagePath, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DestinationFilter narrows public destination listings. Zero values mean
// "no filter".
type DestinationFilter struct {
	Search     string     // matches name, description, or region
	CategoryID *uuid.UUID // limit to a single category
	Page       int        // 1-based
	PerPage    int
	OrderByNew bool // true: created_at DESC (homepage); false: name ASC
}

// Search returns destinations matching the filter plus the total matching
// count for pagination. Each item carries the joined category name and the
// approved-comment count. Predicates are always bound as parameters.
func (s *DestinationStore) Search(f DestinationFilter) ([]models.Destination, int, error) {
	where, args := buildDestinationPredicates(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM destinations d` + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count destinations: %w", err)
	}

	if f.PerPage <= 0 {
		f.PerPage = 12
	}
	if f.Page < 1 {
		f.Page = 1
	}

	order := "d.name ASC"
	if f.OrderByNew {
		order = "d.created_at DESC"
	}

	query := fmt.Sprintf(`
		SELECT `+destinationColumns+`, c.name AS category_name,
		       (SELECT COUNT(*) FROM comments
		        WHERE destination_id = d.id AND is_approved = TRUE) AS comment_count
		FROM destinations d
		LEFT JOIN categories c ON d.category_id = c.id
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		where, order, len(args)+1, len(args)+2,
	)
	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search destinations: %w", err)
	}
	defer rows.Close()

	var items []models.Destination
	for rows.Next() {
		var d models.Destination
		if err := rows.Scan(
			&d.ID, &d.Name, &d.Slug, &d.Description, &d.Region,
			&d.CategoryID, &d.ImagePath, &d.CreatedAt, &d.UpdatedAt,
			&d.CategoryName, &d.CommentCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan destination: %w", err)
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

// buildDestinationPredicates assembles the WHERE clause and bound arguments
// for Search.
func buildDestinationPredicates(f DestinationFilter) (string, []any) {
	var conds []string
	var args []any

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(d.name ILIKE $%d OR d.description ILIKE $%d OR d.region ILIKE $%d)", n, n, n))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		conds = append(conds, fmt.Sprintf("d.category_id = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	where := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		where += " AND " + c
	}
	return where, args
}

// ListAll returns every destination with its category name, newest first.
// Used by the admin listing.
func (s *DestinationStore) ListAll() ([]models.Destination, error) {
	rows, err := s.db.Query(`
		SELECT ` + destinationColumns + `, c.name AS category_name
		FROM destinations d
		LEFT JOIN categories c ON d.category_id = c.id
		ORDER BY d.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	defer rows.Close()

	var items []models.Destination
	for rows.Next() {
		var d models.Destination
		if err := rows.Scan(
			&d.ID, &d.Name, &d.Slug, &d.Description, &d.Region,
			&d.CategoryID, &d.ImagePath, &d.CreatedAt, &d.UpdatedAt,
			&d.CategoryName,
		); err != nil {
			return nil, fmt.Errorf("scan destination: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// ListNames returns (id, name) pairs ordered by name, for filter dropdowns.
func (s *DestinationStore) ListNames() ([]models.Destination, error) {
	rows, err := s.db.Query(`SELECT id, name FROM destinations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list destination names: %w", err)
	}
	defer rows.Close()

	var items []models.Destination
	for rows.Next() {
		var d models.Destination
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan destination name: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// FindByID retrieves a destination by ID. Returns nil if not found.
func (s *DestinationStore) FindByID(id uuid.UUID) (*models.Destination, error) {
	row := s.db.QueryRow(`
		SELECT `+destinationColumns+` FROM destinations d WHERE d.id = $1`, id)
	d, err := scanDestination(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find destination by id: %w", err)
	}
	return d, nil
}

// FindBySlug retrieves a destination by its slug, with the category name
// joined in. Returns nil if not found.
func (s *DestinationStore) FindBySlug(slug string) (*models.Destination, error) {
	var d models.Destination
	err := s.db.QueryRow(`
		SELECT `+destinationColumns+`, c.name AS category_name
		FROM destinations d
		LEFT JOIN categories c ON d.category_id = c.id
		WHERE d.slug = $1
	`, slug).Scan(
		&d.ID, &d.Name, &d.Slug, &d.Description, &d.Region,
		&d.CategoryID, &d.ImagePath, &d.CreatedAt, &d.UpdatedAt,
		&d.CategoryName,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find destination by slug: %w", err)
	}
	return &d, nil
}

// Create inserts a new destination and returns it.
func (s *DestinationStore) Create(d *models.Destination) (*models.Destination, error) {
	row := s.db.QueryRow(`
		INSERT INTO destinations (name, slug, description, region, category_id, image_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+destinationColumns,
		d.Name, d.Slug, d.Description, d.Region, d.CategoryID, d.ImagePath,
	)
	result, err := scanDestination(row)
	if err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}
	return result, nil
}

// Update modifies an existing destination.
func (s *DestinationStore) Update(d *models.Destination) error {
	_, err := s.db.Exec(`
		UPDATE destinations SET
			name = $1, slug = $2, description = $3, region = $4,
			category_id = $5, image_path = $6, updated_at = NOW()
		WHERE id = $7
	`, d.Name, d.Slug, d.Description, d.Region, d.CategoryID, d.ImagePath, d.ID)
	if err != nil {
		return fmt.Errorf("update destination: %w", err)
	}
	return nil
}

// Delete removes a destination by ID. Comments referencing the destination
// are intentionally left in place.
func (s *DestinationStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM destinations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete destination: %w", err)
	}
	return nil
}

// Count returns the total number of destinations.
func (s *DestinationStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM destinations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count destinations: %w", err)
	}
	return count, nil
}

// ListRecent returns the newest destinations with category names, for the
// dashboard.
func (s *DestinationStore) ListRecent(limit int) ([]models.Destination, error) {
	rows, err := s.db.Query(`
		SELECT `+destinationColumns+`, c.name AS category_name
		FROM destinations d
		LEFT JOIN categories c ON d.category_id = c.id
		ORDER BY d.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent destinations: %w", err)
	}
	defer rows.Close()

	var items []models.Destination
	for rows.Next() {
		var d models.Destination
		if err := rows.Scan(
			&d.ID, &d.Name, &d.Slug, &d.Description, &d.Region,
			&d.CategoryID, &d.ImagePath, &d.CreatedAt, &d.UpdatedAt,
			&d.CategoryName,
		); err != nil {
			return nil, fmt.Errorf("scan destination: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
