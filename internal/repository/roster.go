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

// RosterRepository handles teams, players, and the faculty that owns each
// match participant.
type RosterRepository struct {
	pool *pgxpool.Pool
}

// NewRosterRepository creates a new RosterRepository instance.
func NewRosterRepository(pool *pgxpool.Pool) *RosterRepository {
	return &RosterRepository{pool: pool}
}

// CreateTeam creates a team for a faculty and a game.
func (r *RosterRepository) CreateTeam(ctx context.Context, name string, facultyID, gameID uuid.UUID) (*model.Team, error) {
	const query = `
		INSERT INTO teams (name, faculty_id, game_id, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, name, faculty_id, game_id, created_at, updated_at
	`

	var t model.Team
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, name, facultyID, gameID).Scan(
		&t.ID,
		&t.Name,
		&t.FacultyID,
		&t.GameID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return &t, nil
}

// CreatePlayer creates a player for a faculty.
func (r *RosterRepository) CreatePlayer(ctx context.Context, name string, facultyID uuid.UUID, semester *string) (*model.Player, error) {
	const query = `
		INSERT INTO players (name, faculty_id, semester, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, name, faculty_id, semester, created_at, updated_at
	`

	var p model.Player
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, name, facultyID, semester).Scan(
		&p.ID,
		&p.Name,
		&p.FacultyID,
		&p.Semester,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return &p, nil
}

// GetOwner resolves the faculty behind a participant through its team or
// its player. Returns ErrOwnerNotFound when neither path yields a faculty.
func (r *RosterRepository) GetOwner(ctx context.Context, participantID uuid.UUID) (*model.ParticipantOwner, error) {
	const query = `
		SELECT participant_id, faculty_id, display_name, kind
		FROM participant_owners
		WHERE participant_id = $1
	`

	var (
		owner     model.ParticipantOwner
		facultyID *uuid.UUID
		name      *string
	)
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, participantID).Scan(
		&owner.ParticipantID,
		&facultyID,
		&name,
		&owner.Kind,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to resolve participant owner: %w", err)
	}
	if facultyID == nil {
		return nil, ErrOwnerNotFound
	}

	owner.FacultyID = *facultyID
	if name != nil {
		owner.DisplayName = *name
	}
	return &owner, nil
}
