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

const participantColumns = `id, match_id, team_id, player_id, score, points_earned, result, updated_at`

// ParticipantRepository handles match participant persistence and the
// faculty-level reads built on top of it.
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository creates a new ParticipantRepository instance.
func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

func scanParticipant(row pgx.Row) (*model.MatchParticipant, error) {
	var p model.MatchParticipant
	err := row.Scan(
		&p.ID,
		&p.MatchID,
		&p.TeamID,
		&p.PlayerID,
		&p.Score,
		&p.PointsEarned,
		&p.Result,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Add enters a team or a player into a match. Exactly one of teamID and
// playerID must be non-nil.
func (r *ParticipantRepository) Add(ctx context.Context, matchID uuid.UUID, teamID, playerID *uuid.UUID) (*model.MatchParticipant, error) {
	if (teamID == nil) == (playerID == nil) {
		return nil, errors.New("participant needs exactly one of team or player")
	}

	const query = `
		INSERT INTO match_participants (match_id, team_id, player_id, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + participantColumns

	p, err := scanParticipant(db.Conn(ctx, r.pool).QueryRow(ctx, query, matchID, teamID, playerID))
	if err != nil {
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}
	return p, nil
}

// GetByID retrieves a participant by id.
func (r *ParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MatchParticipant, error) {
	const query = `SELECT ` + participantColumns + ` FROM match_participants WHERE id = $1`

	p, err := scanParticipant(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// ListByMatch returns a match's participants in entry order.
func (r *ParticipantRepository) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]*model.MatchParticipant, error) {
	const query = `
		SELECT ` + participantColumns + `
		FROM match_participants
		WHERE match_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*model.MatchParticipant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}

	return participants, nil
}

// UpdateScore sets a participant's score.
func (r *ParticipantRepository) UpdateScore(ctx context.Context, id uuid.UUID, score int) (*model.MatchParticipant, error) {
	const query = `
		UPDATE match_participants SET score = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + participantColumns

	return r.update(ctx, query, id, score)
}

// UpdateResult writes the computed result and points for a participant.
// A nil result clears the stored marker.
func (r *ParticipantRepository) UpdateResult(ctx context.Context, id uuid.UUID, result *model.MatchResult, points int) error {
	const query = `
		UPDATE match_participants
		SET result = $2, points_earned = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := db.Conn(ctx, r.pool).Exec(ctx, query, id, result, points)
	if err != nil {
		return fmt.Errorf("failed to update participant result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

// SetDrawFlag stores or clears the DRAW marker on an unscored participant.
func (r *ParticipantRepository) SetDrawFlag(ctx context.Context, id uuid.UUID, draw bool) (*model.MatchParticipant, error) {
	var result *model.MatchResult
	if draw {
		d := model.ResultDraw
		result = &d
	}

	const query = `
		UPDATE match_participants SET result = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + participantColumns

	return r.update(ctx, query, id, result)
}

func (r *ParticipantRepository) update(ctx context.Context, query string, args ...any) (*model.MatchParticipant, error) {
	p, err := scanParticipant(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}
	return p, nil
}

// ListParticipationsByFaculty returns every participation owned by a
// faculty, through either its teams or its players.
func (r *ParticipantRepository) ListParticipationsByFaculty(ctx context.Context, facultyID uuid.UUID) ([]model.Participation, error) {
	const query = `
		SELECT po.participant_id, po.faculty_id, po.display_name, po.kind,
		       mp.match_id, mp.result, mp.points_earned
		FROM participant_owners po
		JOIN match_participants mp ON mp.id = po.participant_id
		WHERE po.faculty_id = $1
	`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, facultyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}
	defer rows.Close()

	var out []model.Participation
	for rows.Next() {
		var p model.Participation
		if err := rows.Scan(
			&p.Owner.ParticipantID,
			&p.Owner.FacultyID,
			&p.Owner.DisplayName,
			&p.Owner.Kind,
			&p.MatchID,
			&p.Result,
			&p.PointsEarned,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participation: %w", err)
		}
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participations: %w", err)
	}

	return out, nil
}

// FacultyHistory returns the faculty's participations in finished matches,
// most recently completed first.
func (r *ParticipantRepository) FacultyHistory(ctx context.Context, facultyID uuid.UUID) ([]model.HistoryEntry, error) {
	const query = `
		SELECT m.id, g.name, g.point_weight, po.display_name,
		       COALESCE(mp.result, $2), mp.points_earned, m.updated_at
		FROM participant_owners po
		JOIN match_participants mp ON mp.id = po.participant_id
		JOIN matches m ON m.id = mp.match_id
		JOIN games g ON g.id = m.game_id
		WHERE po.faculty_id = $1 AND m.status = 'FINISHED'
		ORDER BY m.updated_at DESC, m.id ASC
	`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, facultyID, model.UnknownResult)
	if err != nil {
		return nil, fmt.Errorf("failed to query faculty history: %w", err)
	}
	defer rows.Close()

	var history []model.HistoryEntry
	for rows.Next() {
		var h model.HistoryEntry
		if err := rows.Scan(
			&h.MatchID,
			&h.GameName,
			&h.GameWeight,
			&h.ParticipantName,
			&h.Result,
			&h.PointsEarned,
			&h.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		history = append(history, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return history, nil
}
