// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sports-week-api/internal/model"
	"sports-week-api/internal/pkg/db"
)

const facultyColumns = `id, name, total_points, created_at, updated_at`

// FacultyRepository handles faculty data persistence.
type FacultyRepository struct {
	pool *pgxpool.Pool
}

// NewFacultyRepository creates a new FacultyRepository instance.
func NewFacultyRepository(pool *pgxpool.Pool) *FacultyRepository {
	return &FacultyRepository{pool: pool}
}

func scanFaculty(row pgx.Row) (*model.Faculty, error) {
	var f model.Faculty
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.TotalPoints,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create creates a new faculty with zero points.
func (r *FacultyRepository) Create(ctx context.Context, name string) (*model.Faculty, error) {
	const query = `
		INSERT INTO faculties (name, total_points, created_at, updated_at)
		VALUES ($1, 0, NOW(), NOW())
		RETURNING ` + facultyColumns

	f, err := scanFaculty(db.Conn(ctx, r.pool).QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create faculty: %w", err)
	}
	return f, nil
}

// GetByID retrieves a faculty by id.
// Returns ErrFacultyNotFound if the faculty does not exist.
func (r *FacultyRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Faculty, error) {
	const query = `SELECT ` + facultyColumns + ` FROM faculties WHERE id = $1`

	f, err := scanFaculty(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFacultyNotFound
		}
		return nil, fmt.Errorf("failed to get faculty: %w", err)
	}
	return f, nil
}

// ListByPoints returns every faculty ordered by total points descending,
// ties broken by name ascending.
func (r *FacultyRepository) ListByPoints(ctx context.Context) ([]*model.Faculty, error) {
	const query = `
		SELECT ` + facultyColumns + `
		FROM faculties
		ORDER BY total_points DESC, name ASC
	`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list faculties: %w", err)
	}
	defer rows.Close()

	var faculties []*model.Faculty
	for rows.Next() {
		f, err := scanFaculty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan faculty: %w", err)
		}
		faculties = append(faculties, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating faculties: %w", err)
	}

	return faculties, nil
}

// AddPoints adds delta to a faculty's total and returns the updated row.
// delta may be negative when a previous award is reversed.
func (r *FacultyRepository) AddPoints(ctx context.Context, id uuid.UUID, delta int) (*model.Faculty, error) {
	const query = `
		UPDATE faculties
		SET total_points = total_points + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + facultyColumns

	f, err := scanFaculty(db.Conn(ctx, r.pool).QueryRow(ctx, query, id, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFacultyNotFound
		}
		return nil, fmt.Errorf("failed to add faculty points: %w", err)
	}
	return f, nil
}

// Delete removes a faculty; its teams and players go with it.
func (r *FacultyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM faculties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete faculty: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrFacultyNotFound
	}
	return nil
}
