package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sports-week-api/internal/model"
	"sports-week-api/internal/pkg/db"
)

const matchColumns = `id, game_id, start_time, venue, status, winner_id, points_applied_at, created_at, updated_at`

// MatchRepository handles match data persistence.
type MatchRepository struct {
	pool *pgxpool.Pool
}

// NewMatchRepository creates a new MatchRepository instance.
func NewMatchRepository(pool *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{pool: pool}
}

func scanMatch(row pgx.Row) (*model.Match, error) {
	var m model.Match
	err := row.Scan(
		&m.ID,
		&m.GameID,
		&m.StartTime,
		&m.Venue,
		&m.Status,
		&m.WinnerID,
		&m.PointsAppliedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create schedules a new UPCOMING match.
func (r *MatchRepository) Create(ctx context.Context, gameID uuid.UUID, startTime time.Time, venue string) (*model.Match, error) {
	const query = `
		INSERT INTO matches (game_id, start_time, venue, status, created_at, updated_at)
		VALUES ($1, $2, $3, 'UPCOMING', NOW(), NOW())
		RETURNING ` + matchColumns

	m, err := scanMatch(db.Conn(ctx, r.pool).QueryRow(ctx, query, gameID, startTime, venue))
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return m, nil
}

// GetByID retrieves a match by id.
func (r *MatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Match, error) {
	return r.get(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
}

// GetForUpdate retrieves a match and locks its row until the surrounding
// transaction ends. Outside a transaction the lock is released immediately.
func (r *MatchRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Match, error) {
	return r.get(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1 FOR UPDATE`, id)
}

func (r *MatchRepository) get(ctx context.Context, query string, id uuid.UUID) (*model.Match, error) {
	m, err := scanMatch(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

// ListByStatus returns matches in the given status ordered by start time.
func (r *MatchRepository) ListByStatus(ctx context.Context, status model.MatchStatus) ([]*model.Match, error) {
	const query = `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE status = $1
		ORDER BY start_time ASC
	`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, nil
}

// UpdateStatus sets the match status and returns the updated row.
func (r *MatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.MatchStatus) (*model.Match, error) {
	const query = `
		UPDATE matches SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + matchColumns

	return r.update(ctx, query, id, status)
}

// SetWinner records the winning team or player. A nil winner clears it.
func (r *MatchRepository) SetWinner(ctx context.Context, id uuid.UUID, winnerID *uuid.UUID) (*model.Match, error) {
	const query = `
		UPDATE matches SET winner_id = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + matchColumns

	return r.update(ctx, query, id, winnerID)
}

// SetPointsApplied stamps or clears the applied marker.
func (r *MatchRepository) SetPointsApplied(ctx context.Context, id uuid.UUID, at *time.Time) error {
	const query = `UPDATE matches SET points_applied_at = $2 WHERE id = $1`

	result, err := db.Conn(ctx, r.pool).Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to set points applied: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMatchNotFound
	}
	return nil
}

func (r *MatchRepository) update(ctx context.Context, query string, args ...any) (*model.Match, error) {
	m, err := scanMatch(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update match: %w", err)
	}
	return m, nil
}
